package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"swipehire/internal/domain/job"
	"swipehire/internal/feed"
	"swipehire/internal/feedclient"
	"swipehire/internal/localstore"

	"github.com/rs/zerolog"
)

var errQuit = errors.New("quit")

// backend is the part of feedclient.Client the shell drives.
type backend interface {
	BaseURL() string
	Token() string
	SetToken(token string)
	Login(ctx context.Context, email, password string) (feedclient.Tokens, error)
	Register(ctx context.Context, name, email, password string) (feedclient.Tokens, error)
	FetchInitial(ctx context.Context) ([]job.Job, error)
	SaveProfile(ctx context.Context, jobDict map[string]any) ([]job.Job, error)
	UploadResume(ctx context.Context, filename string, r io.Reader) (feedclient.UploadResult, error)
	Me(ctx context.Context) (map[string]any, error)
}

type stream interface {
	RequestNext() bool
	Close() error
}

type dialFunc func(ctx context.Context, baseURL, token string, sink feedclient.Sink) (stream, error)

type command struct {
	usage string
	help  string
	run   func(ctx context.Context, args []string) error
}

type shell struct {
	api      backend
	store    *localstore.Store
	matches  *localstore.Matches
	session  *feed.Session
	feed     stream
	dial     dialFunc
	out      io.Writer
	logger   zerolog.Logger
	timeout  time.Duration
	now      func() time.Time
	commands map[string]command

	noticeMu sync.Mutex
	notice   string
}

// feedSink hands feed messages to the session. Catalog pushes arrive on the
// reader goroutine and are held until the next prompt.
type feedSink struct {
	*feed.Session
	sh *shell
}

func (f feedSink) CatalogUpdated(source string, count int) {
	if source == "" {
		source = "an import"
	}
	f.sh.noticeMu.Lock()
	f.sh.notice = fmt.Sprintf("%d new or updated jobs from %s. Run upload or save-profile to rerank.", count, source)
	f.sh.noticeMu.Unlock()
}

func (sh *shell) flushNotice() {
	sh.noticeMu.Lock()
	n := sh.notice
	sh.notice = ""
	sh.noticeMu.Unlock()
	if n != "" {
		fmt.Fprintln(sh.out, n)
	}
}

func newShell(api backend, store *localstore.Store, out io.Writer, logger zerolog.Logger) *shell {
	matches := localstore.OpenMatches(store, logger)
	sh := &shell{
		api:     api,
		store:   store,
		matches: matches,
		session: feed.NewSession(matches, feed.WithLogger(logger)),
		out:     out,
		logger:  logger,
		timeout: 30 * time.Second,
		now:     time.Now,
	}
	sh.dial = func(ctx context.Context, baseURL, token string, sink feedclient.Sink) (stream, error) {
		return feedclient.Dial(ctx, baseURL, token, sink, logger)
	}
	sh.commands = map[string]command{
		"login":        {"login <email> <password>", "sign in", sh.login},
		"register":     {"register <name> <email> <password>", "create an account", sh.register},
		"upload":       {"upload <resume.pdf|resume.docx>", "parse a resume and start a fresh feed", sh.upload},
		"discover":     {"discover", "load the feed", sh.discover},
		"left":         {"left", "pass on the current job", sh.swipe(job.DirectionLeft)},
		"right":        {"right", "match the current job", sh.swipe(job.DirectionRight)},
		"undo":         {"undo", "bring back the last decided job", sh.undo},
		"details":      {"details", "open the current job", sh.details},
		"apply":        {"apply", "apply to the open job", sh.decideSelected(true)},
		"pass":         {"pass", "pass on the open job", sh.decideSelected(false)},
		"close":        {"close", "close the details view", sh.closeDetails},
		"filter":       {"filter [location]", "only show jobs in a location", sh.filter},
		"queue":        {"queue", "list the jobs waiting", sh.queue},
		"history":      {"history", "list decisions this session", sh.history},
		"matches":      {"matches", "list matched jobs", sh.listMatches},
		"unmatch":      {"unmatch <job id>", "remove a match", sh.unmatch},
		"clear":        {"clear", "remove every match", sh.clearMatches},
		"applications": {"applications", "list applications", sh.applications},
		"bio":          {"bio [text]", "show or set the profile bio", sh.bio},
		"save-profile": {"save-profile <json job dict>", "save job preferences and re-rank", sh.saveProfile},
		"me":           {"me", "show the stored profile", sh.me},
		"help":         {"help", "list commands", sh.help},
		"quit":         {"quit", "exit", func(context.Context, []string) error { return errQuit }},
	}
	return sh
}

// Run reads commands until EOF, quit, or ctx is done.
func (sh *shell) Run(ctx context.Context, in io.Reader) error {
	fmt.Fprintln(sh.out, "SwipeHire. Type help for commands.")
	if sh.api.Token() != "" {
		sh.exec(ctx, "discover")
	}

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			lines <- sc.Text()
		}
	}()

	for {
		fmt.Fprint(sh.out, "> ")
		select {
		case <-ctx.Done():
			fmt.Fprintln(sh.out)
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if sh.exec(ctx, line) {
				return nil
			}
		}
	}
}

// exec runs one line and reports whether the shell should stop.
func (sh *shell) exec(ctx context.Context, line string) bool {
	name, args := parseCommand(line)
	sh.flushNotice()
	if name == "" {
		return false
	}
	cmd, ok := sh.commands[name]
	if !ok {
		fmt.Fprintf(sh.out, "unknown command %q, try help\n", name)
		return false
	}

	cctx, cancel := context.WithTimeout(ctx, sh.timeout)
	defer cancel()

	err := cmd.run(cctx, args)
	if errors.Is(err, errQuit) {
		return true
	}
	if err != nil {
		fmt.Fprintf(sh.out, "error: %s\n", describeError(err))
	}
	return false
}

func (sh *shell) Close() {
	sh.closeFeed()
}

func (sh *shell) closeFeed() {
	if sh.feed == nil {
		return
	}
	if err := sh.feed.Close(); err != nil {
		sh.logger.Debug().Err(err).Msg("feed close")
	}
	sh.feed = nil
}

func (sh *shell) login(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usageError(sh.commands["login"].usage)
	}
	if _, err := sh.api.Login(ctx, args[0], args[1]); err != nil {
		return err
	}
	fmt.Fprintln(sh.out, "signed in")
	return sh.discover(ctx, nil)
}

func (sh *shell) register(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return usageError(sh.commands["register"].usage)
	}
	name := strings.Join(args[:len(args)-2], " ")
	if _, err := sh.api.Register(ctx, name, args[len(args)-2], args[len(args)-1]); err != nil {
		return err
	}
	fmt.Fprintln(sh.out, "account created, upload a resume to get started")
	return nil
}

func (sh *shell) upload(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError(sh.commands["upload"].usage)
	}
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	res, err := sh.api.UploadResume(ctx, filepath.Base(args[0]), f)
	if err != nil {
		return err
	}
	fmt.Fprintf(sh.out, "parsed resume for %s <%s>\n", orDash(res.Name), orDash(res.Email))
	if len(res.JobDict) > 0 {
		fmt.Fprintf(sh.out, "job preferences: %s\n", strings.Join(sortedKeys(res.JobDict), ", "))
	}

	return sh.discover(ctx, nil)
}

// discover loads the first batch and opens the live feed. Without a backend
// the cached ranking is shown and nothing is replenished.
func (sh *shell) discover(ctx context.Context, _ []string) error {
	sh.closeFeed()
	sh.session.Reset()

	jobs, err := sh.api.FetchInitial(ctx)
	if err != nil {
		cached, ok, cerr := sh.store.RankedJobs()
		if cerr != nil || !ok || len(cached) == 0 {
			if errors.Is(err, feedclient.ErrNoToken) {
				fmt.Fprintln(sh.out, "No jobs yet. Log in and upload your resume.")
				return nil
			}
			return err
		}
		sh.logger.Warn().Err(err).Msg("backend unavailable, showing cached ranking")
		fmt.Fprintln(sh.out, "offline: showing your last ranking")
		sh.session.Load(cached)
		sh.session.Detach()
		sh.printCurrent()
		return nil
	}

	if err := sh.store.SaveRankedJobs(jobs); err != nil {
		sh.logger.Warn().Err(err).Msg("cache ranked jobs")
	}
	sh.session.Load(jobs)
	if len(jobs) == 0 {
		// The feed connection is only opened for a non-empty batch.
		sh.printCurrent()
		return nil
	}

	st, err := sh.dial(ctx, sh.api.BaseURL(), sh.api.Token(), feedSink{Session: sh.session, sh: sh})
	if err != nil {
		sh.logger.Warn().Err(err).Msg("feed connection failed")
		sh.session.Detach()
	} else {
		sh.feed = st
		sh.session.SetReplenisher(st)
	}
	sh.printCurrent()
	return nil
}

func (sh *shell) swipe(dir job.Direction) func(context.Context, []string) error {
	return func(ctx context.Context, _ []string) error {
		j, err := sh.session.Swipe(ctx, dir)
		if err != nil {
			return err
		}
		sh.printDecision(j, dir)
		sh.printCurrent()
		return nil
	}
}

func (sh *shell) decideSelected(apply bool) func(context.Context, []string) error {
	return func(ctx context.Context, _ []string) error {
		var (
			j   job.Job
			err error
			dir = job.DirectionLeft
		)
		if apply {
			dir = job.DirectionRight
			j, err = sh.session.Apply(ctx)
		} else {
			j, err = sh.session.Pass(ctx)
		}
		if err != nil {
			return err
		}
		sh.printDecision(j, dir)
		sh.printCurrent()
		return nil
	}
}

func (sh *shell) undo(context.Context, []string) error {
	rec, err := sh.session.Undo()
	if err != nil {
		return err
	}
	fmt.Fprintf(sh.out, "undid %s on %s\n", rec.Direction, rec.Job.Title)
	sh.printCurrent()
	return nil
}

func (sh *shell) details(context.Context, []string) error {
	j, err := sh.session.ViewDetails()
	if err != nil {
		return err
	}
	fmt.Fprint(sh.out, renderDetails(j))
	fmt.Fprintln(sh.out, "apply, pass, or close")
	return nil
}

func (sh *shell) closeDetails(context.Context, []string) error {
	sh.session.CloseDetails()
	sh.printCurrent()
	return nil
}

func (sh *shell) filter(_ context.Context, args []string) error {
	loc := strings.Join(args, " ")
	sh.session.SetFilter(feed.Filter{Location: loc})
	if loc == "" {
		fmt.Fprintln(sh.out, "filter cleared")
	} else {
		fmt.Fprintf(sh.out, "showing jobs in %q\n", loc)
	}
	sh.printCurrent()
	return nil
}

func (sh *shell) queue(context.Context, []string) error {
	jobs := sh.session.Queue()
	if len(jobs) == 0 {
		fmt.Fprintln(sh.out, "queue is empty")
		return nil
	}
	for i, j := range jobs {
		fmt.Fprintf(sh.out, "%2d. %s\n", i+1, renderLine(j))
	}
	return nil
}

func (sh *shell) history(context.Context, []string) error {
	recs := sh.session.History()
	if len(recs) == 0 {
		fmt.Fprintln(sh.out, "no decisions yet")
		return nil
	}
	for _, r := range recs {
		fmt.Fprintf(sh.out, "%-5s %s\n", r.Direction, renderLine(r.Job))
	}
	return nil
}

func (sh *shell) listMatches(context.Context, []string) error {
	jobs, mock := sh.matches.View()
	if mock {
		fmt.Fprintln(sh.out, "(sample matches)")
	}
	if len(jobs) == 0 {
		fmt.Fprintln(sh.out, "no matches")
		return nil
	}
	for _, j := range jobs {
		fmt.Fprintf(sh.out, "%s  %s\n", j.ID, renderLine(j))
	}
	return nil
}

func (sh *shell) unmatch(_ context.Context, args []string) error {
	if len(args) != 1 {
		return usageError(sh.commands["unmatch"].usage)
	}
	removed, err := sh.matches.Remove(args[0])
	if err != nil {
		return err
	}
	if !removed {
		fmt.Fprintf(sh.out, "no match with id %s\n", args[0])
		return nil
	}
	fmt.Fprintln(sh.out, "match removed")
	return nil
}

func (sh *shell) clearMatches(context.Context, []string) error {
	if err := sh.matches.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(sh.out, "matches cleared")
	return nil
}

func (sh *shell) applications(context.Context, []string) error {
	apps, _ := localstore.LoadApplications(sh.store, sh.now())
	if len(apps) == 0 {
		fmt.Fprintln(sh.out, "no applications")
		return nil
	}
	for _, a := range apps {
		fmt.Fprintf(sh.out, "%-8s %s at %s (%s)\n", a.Status, a.Title, a.Company, a.AppliedAt.Format("2006-01-02"))
	}
	return nil
}

func (sh *shell) bio(_ context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(sh.out, orDash(sh.store.Bio()))
		return nil
	}
	if err := sh.store.SetBio(strings.Join(args, " ")); err != nil {
		return err
	}
	fmt.Fprintln(sh.out, "bio saved")
	return nil
}

func (sh *shell) saveProfile(ctx context.Context, args []string) error {
	raw := strings.TrimSpace(strings.Join(args, " "))
	if raw == "" {
		return usageError(sh.commands["save-profile"].usage)
	}
	var dict map[string]any
	if err := json.Unmarshal([]byte(raw), &dict); err != nil {
		return fmt.Errorf("job dict must be a JSON object: %w", err)
	}
	jobs, err := sh.api.SaveProfile(ctx, dict)
	if err != nil {
		return err
	}
	fmt.Fprintf(sh.out, "profile saved, %d jobs ranked\n", len(jobs))
	return sh.discover(ctx, nil)
}

func (sh *shell) me(ctx context.Context, _ []string) error {
	data, err := sh.api.Me(ctx)
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(sh.out, string(b))
	return nil
}

func (sh *shell) help(context.Context, []string) error {
	names := make([]string, 0, len(sh.commands))
	for n := range sh.commands {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		c := sh.commands[n]
		fmt.Fprintf(sh.out, "  %-36s %s\n", c.usage, c.help)
	}
	return nil
}

func (sh *shell) printDecision(j job.Job, dir job.Direction) {
	if dir == job.DirectionRight {
		fmt.Fprintf(sh.out, "matched: %s at %s\n", j.Title, j.Company)
		return
	}
	fmt.Fprintf(sh.out, "passed: %s\n", j.Title)
}

func (sh *shell) printCurrent() {
	switch sh.session.State() {
	case feed.StateEmpty:
		fmt.Fprintln(sh.out, "You've seen every job for now. Upload a new resume to start over.")
		return
	case feed.StateLoading:
		if _, ok := sh.session.Current(); !ok {
			fmt.Fprintln(sh.out, "loading more jobs...")
			return
		}
	}
	j, ok := sh.session.Current()
	if !ok {
		fmt.Fprintln(sh.out, "no jobs match the current filter")
		return
	}
	fmt.Fprint(sh.out, renderCard(j, sh.session.Remaining()))
}

func parseCommand(line string) (string, []string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}
	return strings.ToLower(fields[0]), fields[1:]
}

func renderLine(j job.Job) string {
	return fmt.Sprintf("%s at %s, %s (%d%% match)", j.Title, orDash(j.Company), orDash(j.Location), j.MatchPercent())
}

func renderCard(j job.Job, remaining int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s\n", j.Title)
	fmt.Fprintf(&b, "  %s · %s\n", orDash(j.Company), orDash(j.Location))
	fmt.Fprintf(&b, "  %d%% match", j.MatchPercent())
	if len(j.Tags) > 0 {
		fmt.Fprintf(&b, "  [%s]", strings.Join(j.Tags, ", "))
	}
	fmt.Fprintf(&b, "\n  %d in queue. left, right, details, undo\n\n", remaining)
	return b.String()
}

func renderDetails(j job.Job) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\n%s · %s\n", j.Title, orDash(j.Company), orDash(j.Location))
	fmt.Fprintf(&b, "Match: %d%%\n", j.MatchPercent())
	if j.DatePosted != "" {
		fmt.Fprintf(&b, "Posted: %s\n", j.DatePosted)
	}
	if len(j.Tags) > 0 {
		fmt.Fprintf(&b, "Tags: %s\n", strings.Join(j.Tags, ", "))
	}
	if j.DescriptionSnippet != "" {
		fmt.Fprintf(&b, "\n%s\n", j.DescriptionSnippet)
	}
	if j.ApplyLink != "" {
		fmt.Fprintf(&b, "\nApply: %s\n", j.ApplyLink)
	}
	return b.String()
}

func describeError(err error) string {
	var apiErr *feedclient.APIError
	switch {
	case errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized:
		return "session expired, log in again"
	case errors.Is(err, feedclient.ErrNoToken):
		return "log in first"
	case errors.Is(err, feed.ErrNoCurrentJob):
		return "no job on screen"
	case errors.Is(err, feed.ErrSwipeInFlight):
		return "still finishing the last swipe"
	default:
		return err.Error()
	}
}

type usageError string

func (u usageError) Error() string { return "usage: " + string(u) }

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
