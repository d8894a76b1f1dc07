package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"retailadmin/apiclient"
	"retailadmin/config"
	"retailadmin/logger"
	"retailadmin/models"
	"retailadmin/resources"
	"retailadmin/session"
	"retailadmin/views"
)

// ErrNotLoggedIn is returned by commands that need a stored session.
var ErrNotLoggedIn = errors.New("not logged in, run: retailadmin login")

type runtime struct {
	cfg    *config.Config
	store  *session.BadgerStore
	client *apiclient.Client
	app    *App
}

// NewRootCommand builds the command tree. in and out replace stdin and stdout.
func NewRootCommand(in io.Reader, out io.Writer) *cobra.Command {
	var (
		configFile string
		apiURL     string
		sessionDir string
		rt         runtime
	)

	root := &cobra.Command{
		Use:           "retailadmin",
		Short:         "Terminal admin console for the retail inventory API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			if apiURL != "" {
				cfg.APIBaseURL = strings.TrimRight(apiURL, "/")
			}
			if sessionDir != "" {
				cfg.SessionDir = sessionDir
			}
			if err := logger.Init(&logger.Config{Level: cfg.LogLevel, Environment: cfg.Environment, ServiceName: "retailadmin"}); err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			logger.Get().Debug("configuration loaded", cfg.LogFields()...)

			store, err := session.Open(cfg.SessionDir)
			if err != nil {
				return err
			}
			client := apiclient.New(cfg.APIBaseURL, store, apiclient.WithLogger(logger.Get()))
			rt = runtime{
				cfg:    cfg,
				store:  store,
				client: client,
				app:    NewApp(client, store, out, cfg.PageLimit),
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			defer logger.Sync()
			if rt.store != nil {
				return rt.store.Close()
			}
			return nil
		},
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(out)
	root.PersistentFlags().StringVar(&configFile, "config", "", "config file (default $HOME/.retailadmin/config.toml)")
	root.PersistentFlags().StringVar(&apiURL, "api-url", "", "API base URL, overrides api_base_url")
	root.PersistentFlags().StringVar(&sessionDir, "session-dir", "", "session directory, overrides session_dir")

	root.AddCommand(
		loginCommand(&rt, in),
		logoutCommand(&rt),
		whoamiCommand(&rt),
		refreshCommand(&rt),
		registerCommand(&rt),
		listCommand(&rt),
		getCommand(&rt),
		deleteCommand(&rt, in),
		shellCommand(&rt, in, out),
	)
	return root
}

// Execute runs the console with process stdin and stdout.
func Execute(ctx context.Context, in io.Reader, out io.Writer, args []string) error {
	root := NewRootCommand(in, out)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func loginCommand(rt *runtime, in io.Reader) *cobra.Command {
	var identifier, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				fmt.Fprint(cmd.OutOrStdout(), "Password: ")
				line, err := bufio.NewReader(in).ReadString('\n')
				if err != nil && !errors.Is(err, io.EOF) {
					return fmt.Errorf("read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}
			s, err := views.NewLoginView(rt.client, rt.store, rt.app, rt.app, "").Submit(cmd.Context(), identifier, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", s.DisplayName())
			return nil
		},
	}
	cmd.Flags().StringVarP(&identifier, "identifier", "u", "", "email or phone number")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")
	return cmd
}

func logoutCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return views.Logout(rt.store, rt.app, rt.app)
		},
	}
}

func whoamiCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := rt.store.Load()
			if errors.Is(err, session.ErrNoSession) {
				return ErrNotLoggedIn
			}
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "User:    %s\n", s.DisplayName())
			if role := s.User.Text("userRole"); role != "" {
				fmt.Fprintf(w, "Role:    %s\n", role)
			}
			fmt.Fprintf(w, "Expires: %s\n", describeExpiry(s.Token, time.Now()))
			return nil
		},
	}
}

func refreshCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Exchange the stored token for a fresh one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			current, err := rt.store.Load()
			if errors.Is(err, session.ErrNoSession) {
				return ErrNotLoggedIn
			}
			if err != nil {
				return err
			}
			fresh, err := rt.client.Refresh(cmd.Context())
			if err != nil {
				return err
			}
			if len(fresh.User) == 0 {
				fresh.User = current.User
			}
			if err := rt.store.Save(*fresh); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Token refreshed, expires %s\n", describeExpiry(fresh.Token, time.Now()))
			return nil
		},
	}
}

func registerCommand(rt *runtime) *cobra.Command {
	input := map[string]*string{}
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account (does not log in)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			form := views.NewCreateForm(resources.Users, rt.client, rt.app, rt.app)
			for field, value := range input {
				if *value == "" {
					continue
				}
				if err := form.Set(field, *value); err != nil {
					return err
				}
			}
			values := form.Snapshot().Values
			if err := resources.Users.Validate(values, resources.Create); err != nil {
				return err
			}
			created, err := rt.client.Register(cmd.Context(), resources.Users.BeforeSubmit(values))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered user %s (%s)\n", created.ID(), created.Text("email"))
			return nil
		},
	}
	for _, f := range resources.Users.FormFields(resources.Create) {
		if f.Kind == resources.Image {
			continue
		}
		input[f.Name] = cmd.Flags().String(f.Name, "", f.Label)
	}
	return cmd
}

func listCommand(rt *runtime) *cobra.Command {
	var (
		page, limit int
		search      string
	)
	cmd := &cobra.Command{
		Use:   "list <resource>",
		Short: "Show one page of a resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := lookup(args[0])
			if err != nil {
				return err
			}
			if err := requireLogin(rt.store); err != nil {
				return err
			}
			if limit == 0 {
				limit = rt.cfg.PageLimit
			}
			v := views.NewListView(schema, rt.client, rt.app, rt.app, limit)
			if err := v.SetFilter(models.Filter{Page: page, Limit: limit, Search: search}); err != nil {
				return err
			}
			if err := v.Load(cmd.Context()); err != nil {
				return err
			}
			return views.RenderList(cmd.OutOrStdout(), v.Snapshot())
		},
	}
	cmd.Flags().IntVar(&page, "page", models.DefaultPage, "page number")
	cmd.Flags().IntVar(&limit, "limit", 0, "page size (default page_limit)")
	cmd.Flags().StringVar(&search, "search", "", "search term")
	return cmd
}

func getCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "get <resource> <id>",
		Short: "Show one record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := lookup(args[0])
			if err != nil {
				return err
			}
			if err := requireLogin(rt.store); err != nil {
				return err
			}
			rec, err := rt.client.Fetch(cmd.Context(), schema.ItemPath(args[1]))
			if err != nil {
				return err
			}
			return views.RenderRecord(cmd.OutOrStdout(), schema, rec)
		},
	}
}

func deleteCommand(rt *runtime, in io.Reader) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <resource> <id>",
		Short: "Delete one record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := lookup(args[0])
			if err != nil {
				return err
			}
			if err := requireLogin(rt.store); err != nil {
				return err
			}
			v := views.NewListView(schema, rt.client, rt.app, rt.app, rt.cfg.PageLimit)
			return deleteRecord(cmd.Context(), v, args[1], yes, in, cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "delete without asking for confirmation")
	return cmd
}

// deleteRecord asks on in before deleting unless yes is set.
func deleteRecord(ctx context.Context, v *views.ListView, id string, yes bool, in io.Reader, out io.Writer) error {
	if !yes && !askYesNo(bufio.NewScanner(in), out, deleteQuestion(v.Schema().Noun())) {
		fmt.Fprintln(out, "Delete cancelled")
		return nil
	}
	return v.Delete(ctx, id)
}

func shellCommand(rt *runtime, in io.Reader, out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "shell [path]",
		Short: "Start the interactive console",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start := "/"
			if len(args) == 1 {
				start = args[0]
			}
			logger.Get().Info("starting shell", zap.String("api", rt.cfg.APIBaseURL))
			return NewShell(rt.app, out).Run(cmd.Context(), in, start)
		},
	}
}

func lookup(name string) (*resources.Schema, error) {
	schema, ok := resources.Lookup(name)
	if !ok {
		names := make([]string, 0, len(resources.All()))
		for _, s := range resources.All() {
			names = append(names, s.Name)
		}
		return nil, fmt.Errorf("unknown resource %q (one of %s)", name, strings.Join(names, ", "))
	}
	return schema, nil
}

func requireLogin(store session.Store) error {
	if _, ok := store.Token(); !ok {
		return ErrNotLoggedIn
	}
	return nil
}

// describeExpiry reads the exp claim without verifying the signature. It is for display only.
func describeExpiry(token string, now time.Time) string {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return "unknown (not a JWT)"
	}
	if claims.ExpiresAt == nil {
		return "never"
	}
	exp := claims.ExpiresAt.Time
	if exp.Before(now) {
		return fmt.Sprintf("%s (expired)", exp.Format(time.RFC3339))
	}
	return fmt.Sprintf("%s (in %s)", exp.Format(time.RFC3339), exp.Sub(now).Round(time.Minute))
}
