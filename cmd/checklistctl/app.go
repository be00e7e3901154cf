package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/qc-checklist/internal/access"
	"github.com/noah-isme/qc-checklist/internal/client"
	"github.com/noah-isme/qc-checklist/internal/models"
	"github.com/noah-isme/qc-checklist/pkg/config"
	appErrors "github.com/noah-isme/qc-checklist/pkg/errors"
	"github.com/noah-isme/qc-checklist/pkg/logger"
)

const screenAnnotation = "screen"

type app struct {
	client *client.Client
	logger *zap.Logger
	out    io.Writer
	errOut io.Writer

	logLevel   string
	sessionDir string
	owned      bool
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "checklistctl",
		Short:         "Register and complete quality checklists",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.open(); err != nil {
				return err
			}
			return a.guard(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.close()
		},
	}
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "log level written to stderr")
	root.PersistentFlags().StringVar(&a.sessionDir, "session-dir", "", "directory holding the saved session (SESSION_DIR)")

	root.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newChecklistCmd(a),
		newProducaoCmd(a),
		newUsersCmd(a),
		newDashboardCmd(a),
		newAnalyzeCmd(a),
	)
	return root
}

// open builds the client unless one was injected.
func (a *app) open() error {
	if a.client != nil {
		return nil
	}
	if a.logger == nil {
		a.logger = logger.NewCLI(a.logLevel)
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	clientCfg := cfg.Client
	if a.sessionDir != "" {
		clientCfg.SessionDir = a.sessionDir
	}
	if clientCfg.SessionDir == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return fmt.Errorf("resolve session directory: %w", err)
		}
		clientCfg.SessionDir = filepath.Join(dir, "checklistctl")
	}

	c, err := client.New(clientCfg, a.logger)
	if err != nil {
		return err
	}
	c.Session.OnSessionExpired(func(msg string) {
		fmt.Fprintln(a.errOut, msg)
	})
	a.client = c
	a.owned = true
	return nil
}

func (a *app) close() error {
	if !a.owned || a.client == nil {
		return nil
	}
	err := a.client.Close()
	a.client = nil
	a.owned = false
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	return err
}

// guard applies the navigation rule of the screen a command belongs to.
func (a *app) guard(cmd *cobra.Command) error {
	for c := cmd; c != nil; c = c.Parent() {
		screen, ok := c.Annotations[screenAnnotation]
		if !ok {
			continue
		}
		session := a.client.Session.Current()
		if session == nil {
			return appErrors.Clone(appErrors.ErrUnauthorized, "log in first: checklistctl login")
		}
		if !access.CanOpen(session, access.Screen(screen)) {
			return appErrors.Clone(appErrors.ErrForbidden, forbiddenMessage(session.Role, access.Screen(screen)))
		}
		return nil
	}
	return nil
}

func screen(s access.Screen) map[string]string {
	return map[string]string{screenAnnotation: string(s)}
}

func (a *app) print(v interface{}) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseFailure reads "falha|setor[|localizacao[|lado[|observacao]]]".
func parseFailure(raw string) (client.FailureDraft, error) {
	parts := strings.Split(raw, "|")
	if len(parts) < 2 || len(parts) > 5 {
		return client.FailureDraft{}, appErrors.Validation(fmt.Sprintf("failure %q must look like falha|setor[|localizacao[|lado[|observacao]]]", raw))
	}
	for len(parts) < 5 {
		parts = append(parts, "")
	}
	return client.FailureDraft{
		Falha:                 parts[0],
		Setor:                 parts[1],
		LocalizacaoComponente: parts[2],
		LadoPlaca:             parts[3],
		Observacao:            parts[4],
	}, nil
}

// addFailures feeds every flag value into the aggregator.
func addFailures(agg *client.Aggregator, raws []string) error {
	for _, raw := range raws {
		draft, err := parseFailure(raw)
		if err != nil {
			return err
		}
		if err := agg.Add(&draft); err != nil {
			return err
		}
	}
	return nil
}

func forbiddenMessage(role models.UserRole, screen access.Screen) string {
	roles, ok := access.RolesFor(screen)
	if !ok || len(roles) == 0 {
		return fmt.Sprintf("role %s cannot open %s", role, screen)
	}
	allowed := make([]string, len(roles))
	for i, r := range roles {
		allowed[i] = string(r)
	}
	return fmt.Sprintf("role %s cannot open %s (allowed: %s)", role, screen, strings.Join(allowed, ", "))
}
