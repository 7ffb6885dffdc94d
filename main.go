package main

import "github.com/frahmantamala/hospital-admin/cmd"

func main() {
	cmd.Execute()
}
