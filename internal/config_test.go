package internal_test

import (
	"context"
	"time"

	"github.com/frahmantamala/hospital-admin/internal"
	"github.com/frahmantamala/hospital-admin/internal/core/role"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func validConfig() *internal.Config {
	return &internal.Config{
		Server: internal.ServerConfig{
			Port:              8080,
			AllowedOrigins:    "http://localhost:3000, *",
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
		},
		Database: internal.DatabaseConfig{
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
			ConnMaxIdleTime: 5 * time.Minute,
			Source:          "postgres://localhost/hospital_admin",
		},
		Security: internal.SecurityConfig{
			JWTSecret:           "a-very-long-secret-used-only-in-tests-0123",
			AccessTokenDuration: 15 * time.Minute,
			BCryptCost:          10,
		},
		Mail: internal.MailConfig{
			Driver:      "log",
			SenderEmail: "no-reply@hospital.test",
		},
	}
}

var _ = Describe("Config", func() {
	Describe("Validate", func() {
		It("should accept a complete config", func() {
			Expect(validConfig().Validate()).To(Succeed())
		})

		It("should reject a short JWT secret", func() {
			cfg := validConfig()
			cfg.Security.JWTSecret = "short"

			err := cfg.Validate()
			Expect(err).To(MatchError(ContainSubstring("JWTSecret")))
		})

		It("should require postmark tokens for the postmark driver", func() {
			cfg := validConfig()
			cfg.Mail.Driver = "postmark"

			err := cfg.Validate()
			Expect(err).To(MatchError(ContainSubstring("PostmarkServerToken")))
		})

		It("should reject an unknown mail driver", func() {
			cfg := validConfig()
			cfg.Mail.Driver = "smtp"

			Expect(cfg.Validate()).To(MatchError(ContainSubstring("Driver")))
		})

		It("should reject more idle than open connections", func() {
			cfg := validConfig()
			cfg.Database.MaxIdleConns = 20

			Expect(cfg.Validate()).To(MatchError(ContainSubstring("max_idle_conns cannot be greater than max_open_conns")))
		})

		It("should reject a read timeout shorter than the header timeout", func() {
			cfg := validConfig()
			cfg.Server.ReadTimeout = time.Second

			Expect(cfg.Validate()).To(MatchError(ContainSubstring("read_timeout must be >= read_header_timeout")))
		})
	})

	Describe("LoadConfigFromEnv", func() {
		It("should read overrides and keep defaults for the rest", func() {
			GinkgoT().Setenv("PORT", "9090")
			GinkgoT().Setenv("ACCESS_TOKEN_DURATION", "30m")
			GinkgoT().Setenv("VERIFICATION_CODE_TTL", "10m")
			GinkgoT().Setenv("BCRYPT_COST", "not-a-number")

			cfg := internal.LoadConfigFromEnv()
			Expect(cfg.Server.Port).To(Equal(9090))
			Expect(cfg.Security.AccessTokenDuration).To(Equal(30 * time.Minute))
			Expect(cfg.Security.BCryptCost).To(Equal(12))
			Expect(cfg.Verification.GetCodeTTL()).To(Equal(10 * time.Minute))
		})
	})

	Describe("sweep schedule", func() {
		It("should default to once a minute", func() {
			cfg := internal.VerificationConfig{}
			Expect(cfg.GetSweepSchedule()).To(Equal("@every 1m"))
		})

		It("should accept cron expressions and descriptors", func() {
			cfg := validConfig()
			cfg.Verification.SweepSchedule = "*/5 * * * *"
			Expect(cfg.Validate()).To(Succeed())

			cfg.Verification.SweepSchedule = "@hourly"
			Expect(cfg.Validate()).To(Succeed())
		})

		It("should reject a malformed schedule", func() {
			cfg := validConfig()
			cfg.Verification.SweepSchedule = "every minute"
			Expect(cfg.Validate()).To(MatchError(ContainSubstring("invalid sweep_schedule")))
		})
	})

	Describe("GetCodeTTL", func() {
		It("should default to five minutes", func() {
			cfg := internal.VerificationConfig{}
			Expect(cfg.GetCodeTTL()).To(Equal(5 * time.Minute))
		})
	})
})

var _ = Describe("Actor context", func() {
	It("should round-trip the actor", func() {
		actor := &internal.Actor{ID: 1, Email: "admin@hospital.test", Role: role.Admin}
		ctx := internal.ContextWithActor(context.Background(), actor)

		got, ok := internal.ActorFromContext(ctx)
		Expect(ok).To(BeTrue())
		Expect(got).To(BeIdenticalTo(actor))
	})

	It("should report a missing or nil actor", func() {
		_, ok := internal.ActorFromContext(context.Background())
		Expect(ok).To(BeFalse())

		_, ok = internal.ActorFromContext(internal.ContextWithActor(context.Background(), nil))
		Expect(ok).To(BeFalse())
	})
})
