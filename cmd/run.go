package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ytakagi/excelquiz/internal/advice"
	"github.com/ytakagi/excelquiz/internal/app"
	"github.com/ytakagi/excelquiz/internal/auth"
	"github.com/ytakagi/excelquiz/internal/catalog"
	"github.com/ytakagi/excelquiz/internal/llm"
)

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	ctx := cmd.Context()

	st, cfg, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	cat, err := catalog.Load()
	if err != nil {
		return fmt.Errorf("load chapters: %w", err)
	}

	opts := app.Options{
		Store:   st,
		Auth:    auth.NewLocalProvider(st.StateRepo()),
		Catalog: cat,
	}

	llmCfg := cfg.LLMConfig()
	if llmCfg.Discover() {
		provider, err := llm.NewProvider(ctx, llmCfg, st.AdviceLogRepo())
		if err != nil {
			fmt.Fprintln(os.Stderr, "AI provider not configured:", err)
			fmt.Fprintln(os.Stderr, "AI review will be unavailable.")
		} else {
			opts.Adviser = advice.New(provider)
		}
	}

	return app.Run(opts)
}
