/*
Copyright © 2025 Mardromus
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/mardromus/scrumdinger/internal/llm"
	"github.com/mardromus/scrumdinger/internal/logger"
	"github.com/mardromus/scrumdinger/internal/reminder"
	"github.com/mardromus/scrumdinger/internal/server"
	"github.com/mardromus/scrumdinger/internal/summary"
	"github.com/spf13/cobra"
)

var (
	servePort       int
	serveNoReminder bool
	serveNoLLM      bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Scrumdinger API server",
	Long: `Start the HTTP API server that the Scrumdinger web UI talks to:
  - scrum and team CRUD
  - the live meeting room (timer, speaker rotation, transcript)
  - AI meeting summaries and analytics

Examples:
  scrumdinger serve                 # Use the configured port
  scrumdinger serve --port 9000     # Override the port
  scrumdinger serve --no-reminder   # Skip the upcoming-scrum reminder loop
  scrumdinger serve --no-llm        # Run without a summary model`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "API server port (default from config)")
	serveCmd.Flags().BoolVar(&serveNoReminder, "no-reminder", false, "Disable the upcoming-scrum reminder loop")
	serveCmd.Flags().BoolVar(&serveNoLLM, "no-llm", false, "Disable AI summaries and analytics generation")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	logger.SetCommand("serve")
	logger.SetBasePath(cfg.Project.RootDir)

	port := servePort
	if port == 0 {
		port = cfg.Server.Port
	}

	st, err := GetStore()
	if err != nil {
		return fmt.Errorf("initialize store: %w", err)
	}
	defer func() { _ = st.Close() }()

	var gen summary.Generator
	if !serveNoLLM {
		llmCfg := LLMClientConfig()
		if llmCfg.APIKey == "" && llmCfg.Provider != llm.ProviderOllama {
			fmt.Println("⚠️  No LLM API key configured; summaries will be unavailable")
		} else {
			gen = llm.NewTextGenerator(llmCfg)
		}
	}

	srv, err := server.New(port, st, gen, cfg.Project.TemplatesDir)
	if err != nil {
		return fmt.Errorf("create API server: %w", err)
	}

	fmt.Println()
	fmt.Println("🥁 Scrumdinger starting...")
	fmt.Printf("🌐 API: http://localhost:%d\n", port)
	fmt.Printf("📄 Data: %s\n", GetDataFilePath())
	fmt.Println()

	var wg sync.WaitGroup
	errChan := make(chan error, 2)

	srv.Start(&wg, errChan)

	reminderCtx, stopReminder := context.WithCancel(context.Background())
	defer stopReminder()
	if cfg.Reminder.Enabled && !serveNoReminder {
		rem := reminder.NewService(st, reminder.LogNotifier{},
			time.Duration(cfg.Reminder.WindowMinutes)*time.Minute,
			time.Duration(cfg.Reminder.IntervalSeconds)*time.Second)
		wg.Add(1)
		go func() {
			defer wg.Done()
			rem.Run(reminderCtx)
		}()
	}

	fmt.Println("✅ Scrumdinger is running! Press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		fmt.Printf("\n⏹️  Received %v, shutting down...\n", sig)
	case err := <-errChan:
		fmt.Printf("\n❌ Error: %v\n", err)
	}

	stopReminder()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		fmt.Printf("⚠️  Server shutdown error: %v\n", err)
	}

	wg.Wait()
	fmt.Println("✅ Scrumdinger stopped")
	return nil
}
