package config

import (
	"bytes"
	"errors"
	"log/slog"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/peterbourgon/ff/v4"

	"github.com/fkhayef/receiptsplit/internal/report"
)

func setenv(key, value string) {
	Expect(os.Setenv(key, value)).To(Succeed())
	DeferCleanup(os.Unsetenv, key)
}

var _ = Describe("Load", func() {
	It("should use defaults", func() {
		cfg, err := Load([]string{"trip.txt"})
		Expect(err).NotTo(HaveOccurred())

		Expect(cfg.Command).To(Equal(CommandSplit))
		Expect(cfg.File).To(Equal("trip.txt"))
		Expect(cfg.Format).To(Equal(report.FormatText))
		Expect(cfg.Style).To(Equal("auto"))
		Expect(cfg.Port).To(Equal(8080))
		Expect(cfg.MaxBodyBytes).To(Equal(int64(1 << 20)))
		Expect(cfg.LogLevel).To(Equal(slog.LevelInfo))
		Expect(cfg.LogFormat).To(Equal("text"))
		Expect(cfg.CORSOrigins).To(BeEmpty())
	})

	It("should read flags", func() {
		cfg, err := Load([]string{
			"--format", "markdown", "--style", "notty",
			"--log-level", "debug", "--log-format", "JSON",
			"--cors-origins", "http://a.test, http://b.test,",
			"split", "trip.yaml",
		})
		Expect(err).NotTo(HaveOccurred())

		Expect(cfg.Format).To(Equal(report.FormatMarkdown))
		Expect(cfg.Style).To(Equal("notty"))
		Expect(cfg.LogLevel).To(Equal(slog.LevelDebug))
		Expect(cfg.LogFormat).To(Equal("json"))
		Expect(cfg.CORSOrigins).To(Equal([]string{"http://a.test", "http://b.test"}))
		Expect(cfg.File).To(Equal("trip.yaml"))
	})

	It("should read prefixed environment variables", func() {
		setenv("RECEIPTSPLIT_PORT", "9090")
		setenv("RECEIPTSPLIT_API_KEY", "secret")

		cfg, err := Load([]string{"serve"})
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Command).To(Equal(CommandServe))
		Expect(cfg.Port).To(Equal(9090))
		Expect(cfg.APIKey).To(Equal("secret"))
	})

	It("should fall back to PORT", func() {
		setenv("PORT", "3000")

		cfg, err := Load([]string{"serve"})
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Port).To(Equal(3000))
	})

	It("should let flags win over the environment", func() {
		setenv("RECEIPTSPLIT_PORT", "9090")

		cfg, err := Load([]string{"--port", "7070", "serve"})
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Port).To(Equal(7070))
	})

	DescribeTable("invalid command lines",
		func(args []string, want error) {
			_, err := Load(args)
			Expect(err).To(MatchError(want))

			var usageErr *UsageError
			Expect(errors.As(err, &usageErr)).To(BeTrue())
			Expect(usageErr.Help).To(ContainSubstring("--format"))
		},
		Entry("no arguments", []string{}, ErrMissingCommand),
		Entry("split without a file", []string{"split"}, ErrMissingFile),
		Entry("two files", []string{"a.txt", "b.txt"}, ErrUnexpectedArgs),
		Entry("serve with a file", []string{"serve", "a.txt"}, ErrUnexpectedArgs),
		Entry("unknown format", []string{"--format", "xml", "a.txt"}, report.ErrUnknownFormat),
		Entry("unknown log format", []string{"--log-format", "xml", "a.txt"}, ErrLogFormat),
		Entry("zero body limit", []string{"--max-body-bytes", "0", "serve"}, ErrMaxBodyBytes),
	)

	It("should report help requests", func() {
		_, err := Load([]string{"-h"})
		Expect(errors.Is(err, ff.ErrHelp)).To(BeTrue())
	})

	It("should reject an unknown log level", func() {
		_, err := Load([]string{"--log-level", "loud", "a.txt"})
		Expect(err).To(MatchError(ContainSubstring("invalid log level")))
	})
})

var _ = Describe("NewLogger", func() {
	It("should honour level and format", func() {
		var buf bytes.Buffer
		cfg := &Config{LogLevel: slog.LevelWarn, LogFormat: "json"}
		logger := cfg.NewLogger(&buf)

		logger.Info("hidden")
		logger.Warn("shown", "receipt", "Dinner")

		Expect(buf.String()).NotTo(ContainSubstring("hidden"))
		Expect(buf.String()).To(ContainSubstring(`"msg":"shown"`))
		Expect(buf.String()).To(ContainSubstring(`"receipt":"Dinner"`))
	})
})
