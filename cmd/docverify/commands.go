package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"docverify/internal/analysis/models"
	"docverify/internal/apiclient"
	"docverify/internal/documents"
	"docverify/internal/platform/config"
	"docverify/internal/platform/logger"
)

type options struct {
	baseURL      string
	retries      int
	output       string
	verbose      bool
	documentType string
	historyFile  string
}

type app struct {
	opts   options
	out    io.Writer
	errOut io.Writer
	cfg    config.Config
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut, opts: options{retries: -1}}

	root := &cobra.Command{
		Use:           "docverify",
		Short:         "Verify and analyze legal documents with the analysis API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig()
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&a.opts.baseURL, "base-url", "", "analysis API base URL (overrides config)")
	flags.IntVar(&a.opts.retries, "retries", -1, "retries after the first attempt (overrides config)")
	flags.StringVarP(&a.opts.output, "output", "o", "json", "output format (json, text)")
	flags.BoolVarP(&a.opts.verbose, "verbose", "v", false, "log outbound attempts to stderr")

	verify := &cobra.Command{
		Use:   "verify FILE",
		Short: "Check a document's authenticity",
		Args:  cobra.ExactArgs(1),
		RunE:  a.runVerify,
	}
	verify.Flags().StringVarP(&a.opts.documentType, "type", "t", string(documents.TypeOther), "document type id")

	chat := &cobra.Command{
		Use:   "chat FILE MESSAGE",
		Short: "Ask a question about a document",
		Args:  cobra.ExactArgs(2),
		RunE:  a.runChat,
	}
	chat.Flags().StringVar(&a.opts.historyFile, "history", "", "JSON file with prior chat messages")

	root.AddCommand(
		verify,
		&cobra.Command{
			Use:   "analyze FILE",
			Short: "Assess how easily a document could be altered",
			Args:  cobra.ExactArgs(1),
			RunE:  a.runAnalyze,
		},
		chat,
		&cobra.Command{
			Use:   "summarize FILE",
			Short: "Summarize a document",
			Args:  cobra.ExactArgs(1),
			RunE:  a.runSummarize,
		},
		&cobra.Command{
			Use:   "health",
			Short: "Check the analysis API",
			Args:  cobra.NoArgs,
			RunE:  a.runHealth,
		},
		&cobra.Command{
			Use:   "types",
			Short: "List the supported document types",
			Args:  cobra.NoArgs,
			RunE:  a.runTypes,
		},
	)
	return root
}

func (a *app) loadConfig() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if a.opts.baseURL != "" {
		cfg.API.BaseURL = a.opts.baseURL
	}
	if a.opts.retries >= 0 {
		cfg.API.MaxRetries = a.opts.retries
	}
	if a.opts.output != "json" && a.opts.output != "text" {
		return fmt.Errorf("unknown output format %q", a.opts.output)
	}
	a.cfg = cfg
	return nil
}

func (a *app) client() (*apiclient.Client, error) {
	level := "error"
	if a.opts.verbose {
		level = "debug"
	}
	return apiclient.NewFromConfig(a.cfg.API, apiclient.WithLogger(logger.NewWithWriter(a.errOut, level)))
}

// readFile loads path and applies the upload rules before anything is sent.
func (a *app) readFile(path string) (apiclient.File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return apiclient.File{}, err
	}
	name := filepath.Base(path)
	if err := documents.NewUploadPolicy(a.cfg.Upload).ValidateUpload(name, info.Size()); err != nil {
		return apiclient.File{}, err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return apiclient.File{}, err
	}
	return apiclient.File{Name: name, ContentType: http.DetectContentType(content), Content: content}, nil
}

func (a *app) runVerify(cmd *cobra.Command, args []string) error {
	if _, err := documents.ParseDocumentType(a.opts.documentType); err != nil {
		return err
	}
	f, err := a.readFile(args[0])
	if err != nil {
		return err
	}
	c, err := a.client()
	if err != nil {
		return err
	}
	res, err := c.VerifyDocument(cmd.Context(), f, a.opts.documentType)
	if err != nil {
		return err
	}
	return a.print(res, func(w io.Writer) {
		fmt.Fprintf(w, "Valid: %t  Authentic: %t\n", res.IsValid, res.IsAuthentic)
		fmt.Fprintf(w, "Authenticity score: %d  Confidence: %d  Risk: %s\n", res.AuthenticityScore, res.Confidence, res.RiskLevel)
		printList(w, "Issues", res.Issues)
		printList(w, "Recommendations", res.Recommendations)
		fmt.Fprintln(w, res.Summary)
	})
}

func (a *app) runAnalyze(cmd *cobra.Command, args []string) error {
	f, err := a.readFile(args[0])
	if err != nil {
		return err
	}
	c, err := a.client()
	if err != nil {
		return err
	}
	res, err := c.AnalyzeDocument(cmd.Context(), f)
	if err != nil {
		return err
	}
	return a.print(res, func(w io.Writer) {
		fmt.Fprintf(w, "Alterability risk: %s  Confidence: %d\n", res.AlterabilityRisk, res.Confidence)
		printList(w, "Findings", res.Findings)
		fmt.Fprintln(w, res.Summary)
	})
}

func (a *app) runChat(cmd *cobra.Command, args []string) error {
	message := strings.TrimSpace(args[1])
	if message == "" {
		return fmt.Errorf("message is required")
	}
	var history []models.ChatMessage
	if a.opts.historyFile != "" {
		raw, err := os.ReadFile(a.opts.historyFile)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(raw, &history); err != nil {
			return fmt.Errorf("parse chat history: %w", err)
		}
	}
	f, err := a.readFile(args[0])
	if err != nil {
		return err
	}
	c, err := a.client()
	if err != nil {
		return err
	}
	res, err := c.ChatWithDocument(cmd.Context(), f, message, history)
	if err != nil {
		return err
	}
	return a.print(res, func(w io.Writer) {
		fmt.Fprintln(w, res.Response)
	})
}

func (a *app) runSummarize(cmd *cobra.Command, args []string) error {
	f, err := a.readFile(args[0])
	if err != nil {
		return err
	}
	c, err := a.client()
	if err != nil {
		return err
	}
	res, err := c.SummarizeDocument(cmd.Context(), f)
	if err != nil {
		return err
	}
	return a.print(res, func(w io.Writer) {
		fmt.Fprintln(w, res.Summary)
		printList(w, "Key points", res.KeyPoints)
	})
}

func (a *app) runHealth(cmd *cobra.Command, _ []string) error {
	c, err := a.client()
	if err != nil {
		return err
	}
	res, err := c.Health(cmd.Context())
	if err != nil {
		return err
	}
	return a.print(res, func(w io.Writer) {
		fmt.Fprintf(w, "%s (version %s)\n", res.Status, res.Version)
	})
}

func (a *app) runTypes(_ *cobra.Command, _ []string) error {
	types := documents.Types()
	return a.print(types, func(w io.Writer) {
		for _, t := range types {
			fmt.Fprintf(w, "%-12s %s\n", t.ID, t.Label)
		}
	})
}

func (a *app) print(v any, text func(io.Writer)) error {
	if a.opts.output == "text" {
		text(a.out)
		return nil
	}
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printList(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(w, "  - %s\n", item)
	}
}
