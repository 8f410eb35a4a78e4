package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"atelier/pkg/commands"
	"atelier/pkg/config"
	"atelier/pkg/models"
	"atelier/pkg/sample"
	"atelier/pkg/server"
	"atelier/pkg/ui"
	"atelier/pkg/utils"
)

// Options are the persistent flags shared by every command
type Options struct {
	ConfigPath string
	Verbose    bool
	Source     string
}

// NewRootCommand builds `atelier`. Without a subcommand it runs the console.
func NewRootCommand() *cobra.Command {
	opts := &Options{}
	root := &cobra.Command{
		Use:           "atelier",
		Short:         "Gallery agenda, tasks and catalog in the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsole(cmd.Context(), opts)
		},
	}
	root.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "Path to configuration file")
	root.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Enable verbose logging")
	root.PersistentFlags().StringVar(&opts.Source, "source", "", "Data source: api or sample (overrides the config)")

	root.AddCommand(
		newCalendarCommand(opts),
		newTasksCommand(opts),
		newTaskCommand(opts),
		newEventCommand(opts),
		newExportCommand(opts),
		newImportCommand(opts),
		newLoginCommand(opts),
		newLogoutCommand(opts),
		newWhoAmICommand(opts),
		newCatalogCommand(opts),
		newCartCommand(opts),
		newStorageCommand(opts),
		newServeCommand(opts),
	)
	return root
}

// Execute runs the root command with a context cancelled on interrupt
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func runConsole(ctx context.Context, opts *Options) error {
	app, err := newApp(ctx, opts)
	if err != nil {
		return err
	}
	defer app.Close()

	model := ui.NewModel(ui.Deps{
		Agenda: app.Agenda,
		Bus:    app.Bus,
		Auth:   app.Session,
		Prefs:  app.Storage,
		Log:    app.Log.Named("ui"),
	}, app.Config)

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if m, ok := final.(ui.Model); ok {
		m.Close()
	}
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running console: %w", err)
	}
	return nil
}

// withEnv wraps a command body that needs the wired app
func withEnv(opts *Options, run func(cmd *cobra.Command, env *commands.Env, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd.Context(), opts)
		if err != nil {
			return err
		}
		defer app.Close()

		env, unsubscribe := app.Env(cmd.OutOrStdout(), cmd.ErrOrStderr(), cmd.InOrStdin())
		defer unsubscribe()
		return run(cmd, env, args)
	}
}

func stringFlag(cmd *cobra.Command, name string) string {
	v, _ := cmd.Flags().GetString(name)
	return v
}

func boolFlag(cmd *cobra.Command, name string) bool {
	v, _ := cmd.Flags().GetBool(name)
	return v
}

func newCalendarCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Print a month with its events",
		Args:  cobra.NoArgs,
		RunE: withEnv(opts, func(cmd *cobra.Command, env *commands.Env, args []string) error {
			return commands.PrintMonth(cmd.Context(), env, stringFlag(cmd, "month"))
		}),
	}
	cmd.Flags().String("month", "", "Month to print (YYYY-MM, default current)")
	return cmd
}

func newTasksCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List tasks with their stats",
		Args:  cobra.NoArgs,
		RunE: withEnv(opts, func(cmd *cobra.Command, env *commands.Env, args []string) error {
			filter, err := models.ParseTaskFilter(stringFlag(cmd, "status"))
			if err != nil {
				return err
			}
			by, err := models.ParseSortBy(stringFlag(cmd, "sort"))
			if err != nil {
				return err
			}
			order := models.SortAsc
			if boolFlag(cmd, "desc") {
				order = models.SortDesc
			}
			return commands.ListTasks(cmd.Context(), env, filter, by, order)
		}),
	}
	cmd.Flags().String("status", "", "Only tasks with this status (pending, in_progress, completed)")
	cmd.Flags().String("sort", "due", "Sort by due, priority, status or title")
	cmd.Flags().Bool("desc", false, "Sort descending")
	return cmd
}

func newTaskCommand(opts *Options) *cobra.Command {
	taskCmd := &cobra.Command{
		Use:   "task",
		Short: "Create and change tasks",
	}

	add := &cobra.Command{
		Use:   "add <text>",
		Short: `Add a task, e.g. atelier task add "Frame prints +shop" --due 2025-03-14`,
		Args:  cobra.MinimumNArgs(1),
		RunE: withEnv(opts, func(cmd *cobra.Command, env *commands.Env, args []string) error {
			_, err := commands.AddTask(cmd.Context(), env, strings.Join(args, " "), stringFlag(cmd, "due"), stringFlag(cmd, "priority"))
			return err
		}),
	}
	add.Flags().String("due", "", "Due date (YYYY-MM-DD, default today)")
	add.Flags().String("priority", "", "low, medium, high or urgent")

	cycle := &cobra.Command{
		Use:   "cycle <id>",
		Short: "Move a task to its next status",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(opts, func(cmd *cobra.Command, env *commands.Env, args []string) error {
			return commands.CycleTask(cmd.Context(), env, args[0])
		}),
	}

	status := &cobra.Command{
		Use:   "status <id> <status>",
		Short: "Set a task status",
		Args:  cobra.ExactArgs(2),
		RunE: withEnv(opts, func(cmd *cobra.Command, env *commands.Env, args []string) error {
			return commands.SetTaskStatus(cmd.Context(), env, args[0], args[1])
		}),
	}

	check := &cobra.Command{
		Use:   "check <id> <item>",
		Short: "Toggle a checklist item, counted from 1",
		Args:  cobra.ExactArgs(2),
		RunE: withEnv(opts, func(cmd *cobra.Command, env *commands.Env, args []string) error {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("item must be a number: %w", err)
			}
			return commands.CheckItem(cmd.Context(), env, args[0], n)
		}),
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(opts, func(cmd *cobra.Command, env *commands.Env, args []string) error {
			return commands.DeleteTask(cmd.Context(), env, args[0], boolFlag(cmd, "yes"))
		}),
	}
	del.Flags().Bool("yes", false, "Skip confirmation")

	taskCmd.AddCommand(add, cycle, status, check, del)
	return taskCmd
}

func newEventCommand(opts *Options) *cobra.Command {
	eventCmd := &cobra.Command{
		Use:   "event",
		Short: "Complete, cancel or delete events",
	}
	eventCmd.PersistentFlags().String("month", "", "Month the event starts in (YYYY-MM, default current)")

	complete := &cobra.Command{
		Use:   "complete <id>",
		Short: "Mark an event completed",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(opts, func(cmd *cobra.Command, env *commands.Env, args []string) error {
			return commands.CompleteEvent(cmd.Context(), env, args[0], stringFlag(cmd, "month"))
		}),
	}
	cancel := &cobra.Command{
		Use:   "cancel <id>",
		Short: "Cancel an event",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(opts, func(cmd *cobra.Command, env *commands.Env, args []string) error {
			return commands.CancelEvent(cmd.Context(), env, args[0], stringFlag(cmd, "month"))
		}),
	}
	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an event",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(opts, func(cmd *cobra.Command, env *commands.Env, args []string) error {
			return commands.DeleteEvent(cmd.Context(), env, args[0], boolFlag(cmd, "yes"))
		}),
	}
	del.Flags().Bool("yes", false, "Skip confirmation")

	eventCmd.AddCommand(complete, cancel, del)
	return eventCmd
}

func newExportCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export tasks to a json or txt file",
		Args:  cobra.NoArgs,
		RunE: withEnv(opts, func(cmd *cobra.Command, env *commands.Env, args []string) error {
			filter, err := models.ParseTaskFilter(stringFlag(cmd, "status"))
			if err != nil {
				return err
			}
			return commands.ExportTasks(cmd.Context(), env, stringFlag(cmd, "file"), stringFlag(cmd, "type"), filter)
		}),
	}
	cmd.Flags().String("file", "", "Output file")
	cmd.Flags().String("type", "json", "Export file type (json, txt)")
	cmd.Flags().String("status", "", "Only tasks with this status")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newImportCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import tasks from a dated txt list",
		Args:  cobra.NoArgs,
		RunE: withEnv(opts, func(cmd *cobra.Command, env *commands.Env, args []string) error {
			_, err := commands.ImportTasks(cmd.Context(), env, stringFlag(cmd, "file"))
			return err
		}),
	}
	cmd.Flags().String("file", "", "Input file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newLoginCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the gallery backend",
		Args:  cobra.NoArgs,
		RunE: withEnv(opts, func(cmd *cobra.Command, env *commands.Env, args []string) error {
			email := stringFlag(cmd, "email")
			password := stringFlag(cmd, "password")
			if password == "" {
				fmt.Fprint(os.Stderr, "Password: ")
				raw, err := term.ReadPassword(int(os.Stdin.Fd()))
				fmt.Fprintln(os.Stderr)
				if err != nil {
					return fmt.Errorf("reading password: %w", err)
				}
				password = string(raw)
			}
			return commands.Login(cmd.Context(), env, email, password)
		}),
	}
	cmd.Flags().String("email", "", "Account email")
	cmd.Flags().String("password", "", "Account password (prompted when empty)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: withEnv(opts, func(cmd *cobra.Command, env *commands.Env, args []string) error {
			return commands.Logout(env)
		}),
	}
}

func newWhoAmICommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: withEnv(opts, func(cmd *cobra.Command, env *commands.Env, args []string) error {
			commands.WhoAmI(env, time.Now())
			return nil
		}),
	}
}

func newCatalogCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List the artworks for sale",
		Args:  cobra.NoArgs,
		RunE: withEnv(opts, func(cmd *cobra.Command, env *commands.Env, args []string) error {
			return commands.ListCatalog(cmd.Context(), env, stringFlag(cmd, "kind"))
		}),
	}
	cmd.Flags().String("kind", "", "original or digital")
	return cmd
}

func newCartCommand(opts *Options) *cobra.Command {
	cartCmd := &cobra.Command{
		Use:   "cart",
		Short: "Manage the saved cart",
	}

	add := &cobra.Command{
		Use:   "add <artwork-id> [quantity]",
		Short: "Add an artwork to the cart",
		Args:  cobra.RangeArgs(1, 2),
		RunE: withEnv(opts, func(cmd *cobra.Command, env *commands.Env, args []string) error {
			qty := 1
			if len(args) == 2 {
				n, err := strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("quantity must be a number: %w", err)
				}
				qty = n
			}
			return commands.CartAdd(cmd.Context(), env, args[0], qty)
		}),
	}
	remove := &cobra.Command{
		Use:   "remove <artwork-id>",
		Short: "Remove an artwork from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(opts, func(cmd *cobra.Command, env *commands.Env, args []string) error {
			return commands.CartRemove(env, args[0])
		}),
	}
	show := &cobra.Command{
		Use:   "show",
		Short: "Show the cart and its total",
		Args:  cobra.NoArgs,
		RunE: withEnv(opts, func(cmd *cobra.Command, env *commands.Env, args []string) error {
			commands.CartShow(env)
			return nil
		}),
	}

	cartCmd.AddCommand(add, remove, show)
	return cartCmd
}

func newStorageCommand(opts *Options) *cobra.Command {
	storageCmd := &cobra.Command{
		Use:   "storage",
		Short: "Manage local storage",
	}
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete stored keys, e.g. --prefix session.",
		Args:  cobra.NoArgs,
		RunE: withEnv(opts, func(cmd *cobra.Command, env *commands.Env, args []string) error {
			_, err := commands.ClearStorage(env, stringFlag(cmd, "prefix"), boolFlag(cmd, "yes"))
			return err
		}),
	}
	clearCmd.Flags().String("prefix", "", "Only keys starting with this prefix")
	clearCmd.Flags().Bool("yes", false, "Skip confirmation")

	storageCmd.AddCommand(clearCmd)
	return storageCmd
}

func newServeCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the sample REST backend",
		Long:  "Serve the seeded sample agenda and catalog over the same endpoints the client uses.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.ConfigPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if err := utils.InitServerLogger(opts.Verbose); err != nil {
				return err
			}
			defer utils.CloseLogger()

			loc, err := cfg.Location()
			if err != nil {
				return err
			}
			addr, _ := cmd.Flags().GetString("addr")
			if addr == "" {
				addr = cfg.Server.Addr
			}

			srv, err := server.New(server.Config{
				Addr:           addr,
				AdminEmail:     cfg.Server.AdminEmail,
				AdminPassword:  cfg.Server.AdminPassword,
				JWTSecret:      cfg.Server.JWTSecret,
				TokenTTL:       cfg.Server.TokenTTL,
				RateLimit:      cfg.Server.RateLimit,
				RequestTimeout: cfg.RequestTimeout,
			}, sample.NewSeeded(sample.WithLocation(loc)), utils.L())
			if err != nil {
				return err
			}
			return srv.Run(cmd.Context())
		},
	}
	cmd.Flags().String("addr", "", "Listen address (default from config)")
	return cmd
}
