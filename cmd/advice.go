package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ytakagi/excelquiz/internal/llm"
)

var adviceCmd = &cobra.Command{
	Use:   "advice",
	Short: "Test and inspect the AI review integration",
}

var adviceTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Send a test request to the configured provider",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, cfg, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		llmCfg := cfg.LLMConfig()
		if !llmCfg.Discover() {
			return fmt.Errorf("no API key configured; set GEMINI_API_KEY, OPENAI_API_KEY or ANTHROPIC_API_KEY")
		}

		ctx := cmd.Context()
		provider, err := llm.NewProvider(ctx, llmCfg, st.AdviceLogRepo())
		if err != nil {
			return fmt.Errorf("create provider: %w", err)
		}

		fmt.Printf("Provider: %s (%s)\n", llmCfg.Provider, provider.ModelID())
		fmt.Println("Sending test request...")

		resp, err := provider.Generate(llm.WithPurpose(ctx, "cli-test"), llm.Request{
			Prompt:    "VLOOKUPの第4引数にFALSEを指定する理由を一文で説明してください。",
			MaxTokens: 128,
		})
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}

		fmt.Println()
		fmt.Println(resp.Text)
		fmt.Println()
		fmt.Printf("Tokens: %d in / %d out\n", resp.Usage.InputTokens, resp.Usage.OutputTokens)
		return nil
	},
}

var adviceLogCmd = &cobra.Command{
	Use:   "log",
	Short: "List recent AI requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		st, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		recs, err := st.AdviceLogRepo().Recent(context.Background(), limit)
		if err != nil {
			return fmt.Errorf("query advice log: %w", err)
		}
		if len(recs) == 0 {
			fmt.Println("No AI requests recorded yet.")
			return nil
		}

		fmt.Printf("%-5s  %-19s  %-16s  %-24s  %-6s  %-6s  %-7s  %s\n",
			"ID", "Timestamp", "Purpose", "Model", "In", "Out", "Ms", "OK")
		fmt.Println(strings.Repeat("─", 100))
		for _, r := range recs {
			ok := "✓"
			if !r.Success {
				ok = "✗"
			}
			fmt.Printf("%-5d  %-19s  %-16s  %-24s  %-6d  %-6d  %-7d  %s\n",
				r.ID,
				r.Timestamp.Local().Format("2006-01-02 15:04:05"),
				r.Purpose,
				truncate(r.Model, 24),
				r.InputTokens,
				r.OutputTokens,
				r.LatencyMs,
				ok,
			)
		}
		return nil
	},
}

func init() {
	adviceLogCmd.Flags().IntP("limit", "n", 20, "Number of records to show")

	adviceCmd.AddCommand(adviceTestCmd)
	adviceCmd.AddCommand(adviceLogCmd)
}
