package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/noah-isme/qc-checklist/internal/access"
	"github.com/noah-isme/qc-checklist/internal/client"
	"github.com/noah-isme/qc-checklist/internal/dto"
	"github.com/noah-isme/qc-checklist/internal/models"
	appErrors "github.com/noah-isme/qc-checklist/pkg/errors"
)

func newLoginCmd(a *app) *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and save the session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				password = os.Getenv("CHECKLIST_PASSWORD")
			}
			session, err := a.client.Session.Login(cmd.Context(), username, password)
			if err != nil {
				return err
			}
			return a.print(session)
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (or CHECKLIST_PASSWORD)")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		RunE: func(*cobra.Command, []string) error {
			a.client.Session.Logout()
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the session and the screens it may open",
		RunE: func(*cobra.Command, []string) error {
			session := a.client.Session.Current()
			if session == nil {
				return appErrors.Clone(appErrors.ErrUnauthorized, "not logged in")
			}
			screens := []access.Screen{}
			for _, s := range access.Screens() {
				if access.CanOpen(session, s) {
					screens = append(screens, s)
				}
			}
			return a.print(map[string]interface{}{
				"username": session.Username,
				"name":     session.Name,
				"role":     session.Role,
				"screens":  screens,
			})
		},
	}
}

func newChecklistCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:         "checklist",
		Short:       "Create, browse and export checklists",
		Annotations: screen(access.ScreenHistorico),
	}
	cmd.AddCommand(
		newChecklistCreateCmd(a),
		newChecklistListCmd(a),
		newChecklistGetCmd(a),
		newChecklistCompleteCmd(a),
		newChecklistExportCmd(a),
	)
	return cmd
}

func newChecklistCreateCmd(a *app) *cobra.Command {
	var (
		produto  string
		qty      int
		route    bool
		failures []string
		remark   string
	)
	cmd := &cobra.Command{
		Use:         "create",
		Short:       "Register a checklist",
		Annotations: screen(access.ScreenChecklist),
		Example: `  checklistctl checklist create --produto "Placa A" --quantidade 5 --failure "Solda fria|SMT|R12|top"
  checklistctl checklist create --produto "Placa A" --quantidade 5 --route`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			agg := client.NewAggregator()
			var draft client.FailureDraft
			switch {
			case route && len(failures) > 0:
				return appErrors.Validation("a checklist routed to assistance cannot carry failures")
			case len(failures) == 1:
				d, err := parseFailure(failures[0])
				if err != nil {
					return err
				}
				draft = d
			default:
				if err := addFailures(agg, failures); err != nil {
					return err
				}
			}
			draft.Quantidade = qty
			draft.ObservacaoGeral = remark

			doc, err := a.client.Documents.CreateDocument(cmd.Context(), client.CreateInput{Produto: produto, Failures: agg, Draft: draft}, route)
			if err != nil {
				return err
			}
			return a.print(doc)
		},
	}
	cmd.Flags().StringVar(&produto, "produto", "", "product name")
	cmd.Flags().IntVar(&qty, "quantidade", 0, "number of boards")
	cmd.Flags().BoolVar(&route, "route", false, "send to assistance without failures")
	cmd.Flags().StringArrayVar(&failures, "failure", nil, "falha|setor[|localizacao[|lado[|observacao]]], repeatable")
	cmd.Flags().StringVar(&remark, "obs", "", "production remark")
	return cmd
}

func newChecklistListCmd(a *app) *cobra.Command {
	var q dto.ListChecklistsQuery
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List checklists, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			page, err := a.client.Documents.ListDocuments(cmd.Context(), q)
			if err != nil {
				return err
			}
			return a.print(page)
		},
	}
	cmd.Flags().StringVar(&q.Status, "status", "", "PENDENTE or COMPLETO")
	cmd.Flags().StringVar(&q.Search, "search", "", "match produto or responsavel")
	cmd.Flags().IntVar(&q.Page, "page", 1, "page number")
	cmd.Flags().IntVar(&q.Limit, "limit", 20, "page size")
	return cmd
}

func newChecklistGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show one checklist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.client.Documents.GetDocument(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.print(doc)
		},
	}
}

func newChecklistCompleteCmd(a *app) *cobra.Command {
	var (
		add     []string
		remove  []int
		status  string
		qty     int
		remark  string
		partial bool
	)
	cmd := &cobra.Command{
		Use:         "complete ID",
		Short:       "Complete a pending checklist as assistance",
		Annotations: screen(access.ScreenAssistencia),
		Args:        cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			editor, err := a.client.Documents.OpenAssistance(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer editor.Close()

			removeFailures(editor.Failures, remove)
			if err := addFailures(editor.Failures, add); err != nil {
				return err
			}

			edits := client.AssistanceEdits{
				Status:                models.ChecklistStatus(status),
				ObservacaoAssistencia: remark,
			}
			if partial {
				edits.Status = models.ChecklistStatusPendente
			}
			if cmd.Flags().Changed("quantidade") {
				edits.Quantidade = &qty
			}
			doc, err := a.client.Documents.CompleteAssistance(cmd.Context(), editor, edits)
			if err != nil {
				return err
			}
			return a.print(doc)
		},
	}
	cmd.Flags().StringArrayVar(&add, "failure", nil, "failure to add, repeatable")
	cmd.Flags().IntSliceVar(&remove, "remove", nil, "positions of existing failures to drop, comma separated")
	cmd.Flags().StringVar(&status, "status", "", "resulting status, COMPLETO by default")
	cmd.Flags().BoolVar(&partial, "partial", false, "save progress and keep the checklist PENDENTE")
	cmd.Flags().IntVar(&qty, "quantidade", 0, "corrected number of boards")
	cmd.Flags().StringVar(&remark, "obs", "", "assistance remark")
	return cmd
}

func newChecklistExportCmd(a *app) *cobra.Command {
	var (
		q   dto.ExportChecklistsQuery
		out string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download the checklist history as csv or pdf",
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, filename, err := a.client.Gateway.ExportChecklists(cmd.Context(), q)
			if err != nil {
				return err
			}
			if out == "" {
				out = filename
			}
			if out == "" {
				out = "checklists." + q.Format
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintln(a.out, out)
			return nil
		},
	}
	cmd.Flags().StringVar(&q.Format, "format", "csv", "csv or pdf")
	cmd.Flags().StringVar(&q.Status, "status", "", "PENDENTE or COMPLETO")
	cmd.Flags().StringVar(&q.Search, "search", "", "match produto or responsavel")
	cmd.Flags().StringVarP(&out, "output", "o", "", "destination file, server name by default")
	return cmd
}

func newProducaoCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:         "producao",
		Short:       "Record production volume",
		Annotations: screen(access.ScreenGerenciarProducao),
	}

	var note string
	monthly := &cobra.Command{
		Use:   "monthly YYYY-MM TOTAL",
		Short: "Record the total of a month",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return registerVolume(cmd.Context(), a, a.client.Volume.RegisterMonthly, args, note)
		},
	}
	daily := &cobra.Command{
		Use:   "daily YYYY-MM-DD TOTAL",
		Short: "Record the total of a day",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return registerVolume(cmd.Context(), a, a.client.Volume.RegisterDaily, args, note)
		},
	}
	monthly.Flags().StringVar(&note, "note", "", "remark")
	daily.Flags().StringVar(&note, "note", "", "remark")

	list := &cobra.Command{
		Use:         "list",
		Short:       "List production records",
		Annotations: screen(access.ScreenHome),
		RunE: func(cmd *cobra.Command, _ []string) error {
			records, err := a.client.Volume.List(cmd.Context())
			if err != nil {
				return err
			}
			return a.print(records)
		},
	}
	del := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a production record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.client.Volume.DeleteRegistro(cmd.Context(), args[0])
		},
	}
	cmd.AddCommand(monthly, daily, list, del)
	return cmd
}

type registerFunc func(ctx context.Context, date string, total int, note string) (*models.ProducaoRegistro, error)

func registerVolume(ctx context.Context, a *app, register registerFunc, args []string, note string) error {
	total, err := strconv.Atoi(args[1])
	if err != nil {
		return appErrors.Validation(fmt.Sprintf("total %q is not a number", args[1]))
	}
	rec, err := register(ctx, args[0], total, note)
	if err != nil {
		return err
	}
	return a.print(rec)
}

func newUsersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:         "users",
		Short:       "Manage accounts",
		Annotations: screen(access.ScreenGerenciarUsuarios),
	}

	var q dto.ListUsersQuery
	list := &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, _ []string) error {
			users, err := a.client.Users.List(cmd.Context(), q)
			if err != nil {
				return err
			}
			return a.print(users)
		},
	}
	list.Flags().StringVar(&q.Role, "role", "", "filter by role")
	list.Flags().StringVar(&q.Search, "search", "", "match username or name")

	var req dto.CreateUserRequest
	var role string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			req.Role = models.UserRole(role)
			user, err := a.client.Users.Create(cmd.Context(), req)
			if err != nil {
				return err
			}
			return a.print(user)
		},
	}
	create.Flags().StringVar(&req.Username, "username", "", "login name")
	create.Flags().StringVar(&req.Password, "password", "", "initial password")
	create.Flags().StringVar(&req.Name, "name", "", "display name")
	create.Flags().StringVar(&role, "role", string(models.RoleProducao), "producao, assistencia or admin")

	setRole := &cobra.Command{
		Use:   "set-role USERNAME ROLE",
		Short: "Change a user's role",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := findUser(cmd.Context(), a, args[0])
			if err != nil {
				return err
			}
			newRole := models.UserRole(args[1])
			user, err := a.client.Users.Update(cmd.Context(), *target, dto.UpdateUserRequest{Role: &newRole})
			if err != nil {
				return err
			}
			return a.print(user)
		},
	}
	del := &cobra.Command{
		Use:   "delete USERNAME",
		Short: "Delete a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := findUser(cmd.Context(), a, args[0])
			if err != nil {
				return err
			}
			return a.client.Users.Delete(cmd.Context(), *target)
		},
	}
	cmd.AddCommand(list, create, setRole, del)
	return cmd
}

func findUser(ctx context.Context, a *app, username string) (*models.User, error) {
	users, err := a.client.Users.List(ctx, dto.ListUsersQuery{Search: username})
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Username == username {
			return &users[i], nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("user %s not found", username))
}

func newDashboardCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:         "dashboard",
		Short:       "Show today's indicators",
		Annotations: screen(access.ScreenHome),
		RunE: func(cmd *cobra.Command, _ []string) error {
			summary, err := a.client.Insights.Dashboard(cmd.Context())
			if err != nil {
				return err
			}
			return a.print(summary)
		},
	}
}

func newAnalyzeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:         "analyze QUESTION",
		Short:       "Ask a question about recent defects",
		Annotations: screen(access.ScreenAnalise),
		Args:        cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.client.Insights.Analyze(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.print(res)
		},
	}
}

// removeFailures drops each listed position once, highest first, so the
// positions refer to the list as loaded.
func removeFailures(agg *client.Aggregator, positions []int) {
	seen := make(map[int]struct{}, len(positions))
	unique := make([]int, 0, len(positions))
	for _, p := range positions {
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		unique = append(unique, p)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(unique)))
	for _, p := range unique {
		agg.Remove(p)
	}
}
