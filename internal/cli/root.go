package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/apiclient"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/config"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/logger"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/model"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/resource"
	"github.com/CodeCrafters02/ITL-HRMS-2025-sub002/internal/session"
)

const serverEnv = "SITECTL_SERVER"

var errNotSignedIn = errors.New("not signed in, run `sitectl login` first")

// env is shared by every command. It is filled from persistent flags before a
// command runs.
type env struct {
	server      string
	sessionPath string
	output      string
	verbose     bool

	store     *session.FileStore
	client    *apiclient.Client
	catalogue *resource.Catalogue
	reader    *bufio.Reader
}

func NewRootCmd(version, buildDate string) *cobra.Command {
	e := &env{}

	root := &cobra.Command{
		Use:           "sitectl",
		Short:         "Manage site content from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return e.init(cmd)
		},
	}

	root.PersistentFlags().StringVar(&e.server, "server", defaultServer(), "Backend API base URL")
	root.PersistentFlags().StringVar(&e.sessionPath, "session", defaultSessionPath(), "Session file")
	root.PersistentFlags().StringVarP(&e.output, "output", "o", "table", "Output format: table or json")
	root.PersistentFlags().BoolVarP(&e.verbose, "verbose", "v", false, "Log backend requests to stderr")

	root.AddCommand(newVersionCmd(version, buildDate))
	root.AddCommand(newLoginCmd(e))
	root.AddCommand(newLogoutCmd(e))
	root.AddCommand(newWhoamiCmd(e))
	root.AddCommand(newListCmd(e))
	root.AddCommand(newGetCmd(e))
	root.AddCommand(newDeleteCmd(e))
	root.AddCommand(newServicesCmd(e))
	return root
}

func (e *env) init(cmd *cobra.Command) error {
	if e.output != "table" && e.output != "json" {
		return fmt.Errorf("unknown output format %q", e.output)
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	if e.verbose {
		log = logger.New(cmd.ErrOrStderr(), "debug", "console")
	}

	e.store = session.NewFileStore(e.sessionPath)
	e.client = apiclient.New(apiclient.Options{
		BaseURL: strings.TrimRight(e.server, "/"),
		Store:   e.store,
		Logger:  log,
	})
	e.catalogue = resource.NewCatalogue(e.client)
	e.reader = bufio.NewReader(cmd.InOrStdin())
	return nil
}

// session loads the stored sign-in.
func (e *env) session(ctx context.Context) (*session.Session, error) {
	sess, err := e.store.Get(ctx, "")
	if errors.Is(err, model.ErrSessionNotFound) {
		return nil, errNotSignedIn
	}
	if err != nil {
		return nil, err
	}
	if !sess.Authenticated() {
		return nil, errNotSignedIn
	}
	return sess, nil
}

func (e *env) prompt(cmd *cobra.Command, label string) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), label)
	line, err := e.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptPassword hides input on a terminal and reads a plain line otherwise.
func (e *env) promptPassword(cmd *cobra.Command, label string) (string, error) {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.OutOrStdout(), label)
		pass, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.OutOrStdout())
		return string(pass), err
	}
	return e.prompt(cmd, label)
}

func success(w io.Writer, format string, args ...any) {
	_, _ = color.New(color.FgGreen).Fprintf(w, format+"\n", args...)
}

// describe turns API errors into the message a user should see.
func describe(err error) error {
	if apiclient.IsSessionExpired(err) {
		return errors.New("session expired, run `sitectl login` again")
	}
	return err
}

func defaultServer() string {
	if v := strings.TrimSpace(os.Getenv(serverEnv)); v != "" {
		return v
	}
	return config.DefaultAPIBaseURL
}

func defaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".sitectl", "session.json")
	}
	return filepath.Join(home, ".sitectl", "session.json")
}

func newVersionCmd(version, buildDate string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "sitectl %s (built %s)\n", version, buildDate)
			return nil
		},
	}
}
