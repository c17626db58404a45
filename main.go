package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"chatbuf/config"
	"chatbuf/model"
	"chatbuf/provider"
	"chatbuf/ui"
)

const Version = "v0.1.0"

type rootFlags struct {
	provider string
	model    string
	baseURL  string
	debug    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		var credErr *config.CredentialError
		if errors.As(err, &credErr) {
			fmt.Fprintf(os.Stderr, "Error: %v\n\n%s\n", credErr, credErr.Instructions())
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:   "chatbuf [prompt]",
		Short: "Chat with an LLM in a single editable conversation buffer",
		Long: "chatbuf keeps the whole conversation in one text buffer. Your turns and the\n" +
			"assistant's turns are tracked by role, so you can edit any of them and send\n" +
			"the buffer again. Pass a prompt to start a conversation right away.",
		Version:       Version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(flags, strings.Join(args, " "))
		},
	}

	root.Flags().StringVarP(&flags.provider, "provider", "p", "", "chat backend: openai, openrouter, anthropic or ollama")
	root.Flags().StringVarP(&flags.model, "model", "m", "", "model name (default depends on the provider)")
	root.Flags().StringVar(&flags.baseURL, "base-url", "", "override the backend API endpoint")
	root.Flags().BoolVar(&flags.debug, "debug", false, "write a debug log to the data directory")

	root.AddCommand(newAuthCmd())
	return root
}

func loadConfig(flags *rootFlags) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if flags != nil {
		if flags.provider != "" {
			cfg.Provider = flags.provider
		}
		if flags.model != "" {
			cfg.Model = flags.model
		}
		if flags.baseURL != "" {
			cfg.BaseURL = flags.baseURL
		}
	}

	debug := flags != nil && flags.debug
	config.InitDebugLog(cfg.DataDir(), debug)
	return cfg, nil
}

func runChat(flags *rootFlags, prompt string) error {
	interactive := isatty.IsTerminal(os.Stdout.Fd())

	cfg, err := loadConfig(flags)
	if err != nil {
		return startupError(interactive, "Configuration Error", err)
	}

	p, err := provider.FromConfig(cfg)
	if err != nil {
		return startupError(interactive, "Provider Error", err)
	}

	ctrl := model.NewController(p, cfg.CredentialStore, cfg.RequestTimeout)

	if !interactive {
		return runOnce(ctrl, prompt)
	}

	program := tea.NewProgram(
		ui.NewAppView(cfg, ctrl, prompt),
		tea.WithAltScreen(),
	)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("error running chatbuf: %w", err)
	}
	return nil
}

// startupError shows err in the error modal before the main UI exists, then
// returns it so the process still exits non-zero.
func startupError(interactive bool, title string, err error) error {
	if !interactive {
		return err
	}
	p := tea.NewProgram(ui.NewErrorModal(title, err.Error()), tea.WithAltScreen())
	if _, runErr := p.Run(); runErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
	}
	return err
}

// runOnce sends a single prompt without the UI and prints the reply, for use
// in pipes and scripts.
func runOnce(ctrl *model.Controller, prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return errors.New("no terminal available: pass a prompt to get a single reply")
	}

	cmd, err := ctrl.StartConversation(prompt)
	if err != nil {
		return err
	}
	if _, err := ctrl.HandleMsg(cmd()); err != nil {
		return err
	}

	reply, _ := ctrl.Default().LastAssistantReply()
	fmt.Println(reply)
	return nil
}
