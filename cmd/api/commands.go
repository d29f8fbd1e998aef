package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"notaryregistry/activity"
	"notaryregistry/auth"
	"notaryregistry/config"
	"notaryregistry/db"
	"notaryregistry/document"
	"notaryregistry/logging"
)

type cli struct {
	configPath string
	cfg        *config.Config
	logger     *zap.Logger
}

func rootCommand() *cobra.Command {
	c := &cli{}
	cmd := &cobra.Command{
		Use:          "notary [command] [flags]",
		Short:        "Notary document registry API",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRunE: func(*cobra.Command, []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.LogLevel)
			if err != nil {
				return fmt.Errorf("build logger: %w", err)
			}
			c.cfg, c.logger = cfg, logger
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "path to an optional configuration file")

	cmd.AddCommand(
		c.serveCommand(),
		c.migrateCommand(),
		c.userCommand(),
		c.hashPasswordCommand(),
	)
	return cmd
}

func (c *cli) serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the registry HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.cfg.Validate(); err != nil {
				return err
			}
			if c.cfg.UsesDefaultSecret() {
				c.logger.Warn("JWT_SECRET is not set; tokens are signed with the built-in default secret and can be forged")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			pool, err := db.NewPool(ctx, c.cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer pool.Close()

			activityRepo := activity.NewRepository(pool)
			authService := auth.NewService(auth.NewRepository(pool), activityRepo, c.cfg.JWTSecret).
				WithTokenTTL(c.cfg.TokenTTL).
				WithLogger(c.logger.Named("auth"))

			server := &Server{
				authService:     authService,
				documentService: document.NewService(pool, document.NewRepository(pool), activityRepo),
				activityService: activity.NewService(activityRepo),
				gate:            auth.NewGate(authService),
				logger:          c.logger.Named("http"),
			}
			e := server.Echo(c.cfg.CORSAllowOrigins)

			listener, err := listen(ctx, c.cfg.HTTPAddr)
			if err != nil {
				return err
			}
			c.logger.Info("starting registry API", zap.String("address", listener.Addr().String()))
			err = serve(ctx, e.Server, listener, c.cfg.ShutdownTimeout)
			c.logger.Info("registry API stopped")
			return err
		},
	}
}

func (c *cli) migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if c.cfg.DatabaseURL == "" {
				return config.ErrMissingDatabaseURL
			}
			if err := db.Migrate(cmd.Context(), c.cfg.DatabaseURL); err != nil {
				return err
			}
			c.logger.Info("migrations applied")
			return nil
		},
	}
}

func (c *cli) userCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "User commands",
	}
	cmd.AddCommand(c.userCreateCommand())
	return cmd
}

type userCreateOptions struct {
	email    string
	fullName string
	role     string
	phone    string
	region   string
	bcrypt   bool
}

func (c *cli) userCreateCommand() *cobra.Command {
	var opts userCreateOptions
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create user",
		Long: "Creates a user with the given email, name and role. The password is read\n" +
			"from stdin or through the interactive prompt.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			params, err := opts.params()
			if err != nil {
				return err
			}
			if c.cfg.DatabaseURL == "" {
				return config.ErrMissingDatabaseURL
			}

			password, err := readPassword(os.Stdin, cmd.ErrOrStderr(), "password: ")
			if err != nil {
				return err
			}
			if params.PasswordHash, err = opts.hash(password); err != nil {
				return err
			}

			pool, err := db.NewPool(cmd.Context(), c.cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer pool.Close()

			user, err := auth.NewRepository(pool).CreateUser(cmd.Context(), params)
			if err != nil {
				return err
			}
			c.logger.Info("created user",
				zap.Int64("id", user.ID),
				zap.String("email", user.Email),
				zap.String("role", string(user.Role)),
			)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.email, "email", "", "login email (required)")
	flags.StringVar(&opts.fullName, "full-name", "", "display name (required)")
	flags.StringVar(&opts.role, "role", string(auth.RoleClient), "one of client, notary, admin")
	flags.StringVar(&opts.phone, "phone", "", "contact phone")
	flags.StringVar(&opts.region, "region", "", "region")
	flags.BoolVar(&opts.bcrypt, "bcrypt", false, "store a bcrypt digest instead of unsalted SHA-256")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("full-name")
	return cmd
}

var errEmailDelimiter = errors.New("email must not contain ':'")

func (o userCreateOptions) params() (auth.CreateUserParams, error) {
	role, err := auth.ParseRole(o.role)
	if err != nil {
		return auth.CreateUserParams{}, err
	}
	if strings.ContainsRune(o.email, ':') {
		return auth.CreateUserParams{}, errEmailDelimiter
	}
	return auth.CreateUserParams{
		Email:    o.email,
		FullName: o.fullName,
		Role:     role,
		Phone:    optional(o.phone),
		Region:   optional(o.region),
	}, nil
}

func (o userCreateOptions) hash(password string) (string, error) {
	if o.bcrypt {
		return auth.HashPasswordBcrypt(password)
	}
	return auth.HashPassword(password), nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (c *cli) hashPasswordCommand() *cobra.Command {
	var useBcrypt bool
	cmd := &cobra.Command{
		Use:   "hash-password",
		Short: "Print the stored digest of a password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := readPassword(os.Stdin, cmd.ErrOrStderr(), "password: ")
			if err != nil {
				return err
			}
			digest, err := userCreateOptions{bcrypt: useBcrypt}.hash(password)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), digest)
			return err
		},
	}
	cmd.Flags().BoolVar(&useBcrypt, "bcrypt", false, "print a bcrypt digest instead of unsalted SHA-256")
	return cmd
}

func run(ctx context.Context, args []string) error {
	cmd := rootCommand()
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}
