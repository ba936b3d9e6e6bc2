package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	httpcontext "github.com/examshare/examshare-client/internal/api/http/context"
	"github.com/examshare/examshare-client/internal/api/http/router"
	httpserver "github.com/examshare/examshare-client/internal/api/http/server"
	"github.com/examshare/examshare-client/internal/model"
	"github.com/examshare/examshare-client/internal/server"
	"github.com/examshare/examshare-client/internal/service"
	"github.com/examshare/examshare-client/internal/storage/minio"
	"github.com/examshare/examshare-client/internal/token"
)

var errUsage = errors.New("usage")

type command struct {
	usage string
	run   func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]command{
	"login":          {"login -username NAME [-password PASS]", runLogin},
	"register":       {"register -email E -username U -password P [-first F] [-last L] [-type student|teacher]", runRegister},
	"logout":         {"logout", runLogout},
	"whoami":         {"whoami", runWhoami},
	"status":         {"status", runStatus},
	"list":           {"list [-page N] [-search Q] [-matiere M] [-niveau N] [-type T] [-annee A] [-ordering O]", runList},
	"show":           {"show ID", runShow},
	"preview":        {"preview ID", runPreview},
	"download":       {"download [-o FILE] ID", runDownload},
	"upload":         {"upload -file PDF -titre T -matiere M -niveau N [-type T] [-annee A] [-professeur P] [-description D]", runUpload},
	"view":           {"view ID", runView},
	"comments":       {"comments ID", runComments},
	"comment":        {"comment [-parent ID] ID TEXT", runComment},
	"rate":           {"rate -difficulte 1-5 -pertinence 1-5 ID", runRate},
	"recommend":      {"recommend [-limit N]", runRecommend},
	"similar":        {"similar [-limit N] ID", runSimilar},
	"admin-stats":    {"admin-stats", runAdminStats},
	"admin-generate": {"admin-generate [-users N] [-epreuves N] [-interactions N]", runAdminGenerate},
	"admin-export":   {"admin-export [-format json|csv] [-o FILE]", runAdminExport},
	"mirror":         {"mirror ID...", runMirror},
	"proxy":          {"proxy", runProxy},
}

func usage(w io.Writer) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(w, "usage: examshare <command> [flags]")
	fmt.Fprintln(w)
	for _, name := range names {
		fmt.Fprintf(w, "  %s\n", commands[name].usage)
	}
}

// run dispatches args[0] to its command.
func run(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, ok := commands[args[0]]
	if !ok {
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}
	return cmd.run(ctx, a, args[1:])
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parse(fs *flag.FlagSet, args []string, positional int) ([]string, error) {
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", errUsage, fs.Name(), err)
	}
	if fs.NArg() < positional {
		return nil, fmt.Errorf("%w: %s needs %d argument(s)", errUsage, fs.Name(), positional)
	}
	return fs.Args(), nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", errUsage, s)
	}
	return id, nil
}

func (a *app) print(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runLogin(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("login")
	username := fs.String("username", "", "account username")
	password := fs.String("password", "", "account password, read from stdin when empty")
	if _, err := parse(fs, args, 0); err != nil {
		return err
	}
	if *username == "" {
		return fmt.Errorf("%w: login needs -username", errUsage)
	}
	if *password == "" {
		line, err := bufio.NewReader(a.in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to read password: %w", err)
		}
		*password = strings.TrimRight(line, "\r\n")
	}

	result, err := a.auth.Login(ctx, *username, *password)
	if err != nil {
		return err
	}
	return a.print(result.User)
}

func runRegister(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("register")
	var in model.RegisterInput
	userType := fs.String("type", string(model.UserTypeStudent), "student or teacher")
	fs.StringVar(&in.Email, "email", "", "email address")
	fs.StringVar(&in.Username, "username", "", "username")
	fs.StringVar(&in.Password, "password", "", "password")
	fs.StringVar(&in.FirstName, "first", "", "first name")
	fs.StringVar(&in.LastName, "last", "", "last name")
	if _, err := parse(fs, args, 0); err != nil {
		return err
	}
	if in.Email == "" || in.Username == "" || in.Password == "" {
		return fmt.Errorf("%w: register needs -email, -username and -password", errUsage)
	}
	in.UserType = model.UserType(*userType)

	result, err := a.auth.Register(ctx, in)
	if err != nil {
		return err
	}
	return a.print(result.User)
}

func runLogout(ctx context.Context, a *app, _ []string) error {
	return a.auth.Logout(ctx)
}

func runWhoami(ctx context.Context, a *app, _ []string) error {
	user, err := a.auth.CurrentUser(ctx)
	if err != nil {
		return err
	}
	return a.print(user)
}

func runStatus(ctx context.Context, a *app, _ []string) error {
	st, err := service.Status(ctx, a.session, token.NewJWT(a.cfg.JWT.Secret), time.Now())
	if err != nil {
		return err
	}
	return a.print(st)
}

func runList(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("list")
	var p model.ListParams
	fs.IntVar(&p.Page, "page", 0, "page number")
	fs.StringVar(&p.Search, "search", "", "full-text search")
	fs.StringVar(&p.Matiere, "matiere", "", "subject")
	fs.StringVar(&p.Niveau, "niveau", "", "level")
	fs.StringVar(&p.TypeEpreuve, "type", "", "exam type")
	fs.StringVar(&p.AnneeAcademique, "annee", "", "academic year")
	fs.StringVar(&p.Ordering, "ordering", "", "sort field")
	if _, err := parse(fs, args, 0); err != nil {
		return err
	}

	page, err := a.epreuves.List(ctx, p)
	if err != nil {
		return err
	}
	return a.print(page)
}

func idCommand(name string, args []string) (int64, error) {
	rest, err := parse(newFlagSet(name), args, 1)
	if err != nil {
		return 0, err
	}
	return parseID(rest[0])
}

func runShow(ctx context.Context, a *app, args []string) error {
	id, err := idCommand("show", args)
	if err != nil {
		return err
	}
	ep, err := a.epreuves.Get(ctx, id)
	if err != nil {
		return err
	}
	return a.print(ep)
}

func runPreview(ctx context.Context, a *app, args []string) error {
	id, err := idCommand("preview", args)
	if err != nil {
		return err
	}
	u, err := a.epreuves.PreviewURL(ctx, id)
	if err != nil {
		return err
	}
	return a.print(map[string]string{"url": u})
}

func runDownload(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("download")
	output := fs.String("o", "", "write the PDF to this file")
	rest, err := parse(fs, args, 1)
	if err != nil {
		return err
	}
	id, err := parseID(rest[0])
	if err != nil {
		return err
	}

	dl, err := a.epreuves.Download(ctx, id)
	if err != nil {
		return err
	}
	if dl.Location != "" {
		return a.print(map[string]string{"location": dl.Location})
	}
	if *output == "" {
		_, err = a.out.Write(dl.Content)
		return err
	}
	if err := os.WriteFile(*output, dl.Content, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", *output, err)
	}
	return a.print(map[string]any{"file": *output, "bytes": len(dl.Content)})
}

func runUpload(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("upload")
	var in model.UploadInput
	file := fs.String("file", "", "PDF to upload")
	fs.StringVar(&in.Titre, "titre", "", "title")
	fs.StringVar(&in.Matiere, "matiere", "", "subject")
	fs.StringVar(&in.Niveau, "niveau", "", "level")
	fs.StringVar(&in.TypeEpreuve, "type", "", "exam type")
	fs.StringVar(&in.AnneeAcademique, "annee", "", "academic year")
	fs.StringVar(&in.Professeur, "professeur", "", "teacher")
	fs.StringVar(&in.Description, "description", "", "description")
	if _, err := parse(fs, args, 0); err != nil {
		return err
	}
	if *file == "" {
		return fmt.Errorf("%w: upload needs -file", errUsage)
	}

	f, err := os.Open(*file)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", *file, err)
	}
	defer f.Close()
	in.FileName = filepath.Base(*file)

	result, err := a.epreuves.Upload(ctx, in, f)
	if err != nil {
		return err
	}
	return a.print(result)
}

func runView(ctx context.Context, a *app, args []string) error {
	id, err := idCommand("view", args)
	if err != nil {
		return err
	}
	return a.epreuves.RecordView(ctx, id)
}

func runComments(ctx context.Context, a *app, args []string) error {
	id, err := idCommand("comments", args)
	if err != nil {
		return err
	}
	list, err := a.commentaires.List(ctx, id)
	if err != nil {
		return err
	}
	return a.print(list)
}

func runComment(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("comment")
	parentFlag := fs.Int64("parent", 0, "reply to this comment")
	rest, err := parse(fs, args, 2)
	if err != nil {
		return err
	}
	id, err := parseID(rest[0])
	if err != nil {
		return err
	}
	var parent *int64
	if *parentFlag > 0 {
		parent = parentFlag
	}

	c, err := a.commentaires.Create(ctx, id, strings.Join(rest[1:], " "), parent)
	if err != nil {
		return err
	}
	return a.print(c)
}

func runRate(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("rate")
	difficulte := fs.Int("difficulte", 0, "difficulty, 1 to 5")
	pertinence := fs.Int("pertinence", 0, "relevance, 1 to 5")
	rest, err := parse(fs, args, 1)
	if err != nil {
		return err
	}
	id, err := parseID(rest[0])
	if err != nil {
		return err
	}

	ev, err := a.evaluations.Submit(ctx, id, *difficulte, *pertinence)
	if err != nil {
		return err
	}
	return a.print(ev)
}

func runRecommend(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("recommend")
	limit := fs.Int("limit", 10, "number of recommendations")
	if _, err := parse(fs, args, 0); err != nil {
		return err
	}
	eps, err := a.recommendations.Personalized(ctx, *limit)
	if err != nil {
		return err
	}
	return a.print(eps)
}

func runSimilar(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("similar")
	limit := fs.Int("limit", 5, "number of similar exams")
	rest, err := parse(fs, args, 1)
	if err != nil {
		return err
	}
	id, err := parseID(rest[0])
	if err != nil {
		return err
	}
	eps, err := a.recommendations.Similar(ctx, id, *limit)
	if err != nil {
		return err
	}
	return a.print(eps)
}

func runAdminStats(ctx context.Context, a *app, _ []string) error {
	stats, err := a.admin.Stats(ctx)
	if err != nil {
		return err
	}
	return a.print(stats)
}

func runAdminGenerate(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("admin-generate")
	var cfg model.GenerateConfig
	fs.IntVar(&cfg.Users, "users", 50, "users to create")
	fs.IntVar(&cfg.Epreuves, "epreuves", 100, "exams to create")
	fs.IntVar(&cfg.Interactions, "interactions", 500, "interactions to create")
	if _, err := parse(fs, args, 0); err != nil {
		return err
	}
	result, err := a.admin.GenerateData(ctx, cfg)
	if err != nil {
		return err
	}
	return a.print(result)
}

func runAdminExport(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("admin-export")
	format := fs.String("format", string(model.ExportJSON), "json or csv")
	output := fs.String("o", "", "write the export to this file")
	if _, err := parse(fs, args, 0); err != nil {
		return err
	}

	data, err := a.admin.Export(ctx, model.ExportFormat(*format))
	if err != nil {
		return err
	}
	if *output == "" {
		_, err = a.out.Write(data)
		return err
	}
	if err := os.WriteFile(*output, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", *output, err)
	}
	return a.print(map[string]any{"file": *output, "bytes": len(data)})
}

func runMirror(ctx context.Context, a *app, args []string) error {
	rest, err := parse(newFlagSet("mirror"), args, 1)
	if err != nil {
		return err
	}
	ids := make([]int64, 0, len(rest))
	for _, s := range rest {
		id, err := parseID(s)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}

	st := a.cfg.Storage
	store, err := minio.New(ctx, minio.Config{
		Endpoint:  st.Endpoint,
		AccessKey: st.AccessKey,
		SecretKey: st.SecretKey,
		Bucket:    st.Bucket,
		Region:    st.Region,
		UseSSL:    st.UseSSL,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	m, err := service.NewMirror(a.epreuves, store, a.files, a.client.BaseURL(), a.logger)
	if err != nil {
		return err
	}
	results, err := m.MirrorAll(ctx, ids)
	if printErr := a.print(results); printErr != nil && err == nil {
		err = printErr
	}
	return err
}

func runProxy(ctx context.Context, a *app, _ []string) error {
	cm := httpcontext.NewManager()
	handler := router.New(a.client, a.client.LoginPath(), a.registry, cm, a.logger).Register()
	srv := httpserver.NewHTTPServer(handler, a.cfg.Proxy.Address)

	var certFile, keyFile string
	if a.cfg.Proxy.EnableHTTPS {
		certFile, keyFile = a.cfg.Proxy.CertFileName, a.cfg.Proxy.PrivateKeyFileName
	}
	sl := server.NewSecurityLayer(certFile, keyFile)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("Starting proxy on", "address", srv.Address(), "api", a.client.BaseURL())
		errCh <- srv.Start(sl)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	a.logger.Info("received interruption signal, shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		a.logger.Error("error during proxy shutdown", "error", err, "address", srv.Address())
	}
	return <-errCh
}
