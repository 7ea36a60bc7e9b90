package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"fintrack/core/appcontext"
	"fintrack/core/config"
	csvparser "fintrack/core/csv"
	"fintrack/core/identity"
	"fintrack/core/ingest"
	"fintrack/core/model"
	"fintrack/core/persistence"
	"fintrack/core/storage"
	"fintrack/core/synthetic"
	"fintrack/core/tracker"
)

type command func(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error

var commands = map[string]command{
	"summary":                 runSummary,
	"add":                     runAdd,
	"edit":                    runEdit,
	"remove":                  runRemove,
	"month":                   runMonth,
	"add-goal":                runAddGoal,
	"remove-goal":             runRemoveGoal,
	"add-investment":          runAddInvestment,
	"remove-investment":       runRemoveInvestment,
	"advisor-context":         runAdvisorContext,
	"import":                  runImport,
	"export":                  runExport,
	"generate-synthetic-data": runGenerateSyntheticData,
}

func commandNames() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// openTracker wires the sqlite cache and, for a signed-in user with a configured
// MongoDB, the remote store. The returned func closes everything it opened.
func openTracker(ctx context.Context, cfg *config.Config) (*tracker.Tracker, func(), error) {
	logger := appcontext.LoggerFromContext(ctx)

	cache, err := storage.OpenSQLiteCache(ctx, cfg.CachePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open cache: %w", err)
	}
	closers := []func(){func() {
		if closeErr := cache.Close(); closeErr != nil {
			logger.ErrorContext(ctx, "Error closing cache", "error", closeErr)
		}
	}}
	release := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var remote persistence.RemoteStore
	if cfg.UserID != "" && cfg.RemoteEnabled {
		client, connErr := storage.ConnectToMongoDBFunc(ctx, cfg.MongoURI)
		if connErr != nil {
			release()
			return nil, nil, fmt.Errorf("connection to MongoDB failed: %w", connErr)
		}
		closers = append(closers, func() {
			// The command context may already be spent.
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if deferErr := client.Disconnect(disconnectCtx); deferErr != nil {
				logger.ErrorContext(ctx, "Error disconnecting from MongoDB", "error", deferErr)
			}
		})
		remote = storage.NewMongoRepository(storage.NewMongoProvider(client, cfg.MongoDatabase))
	}

	t, err := tracker.New(ctx, tracker.Options{
		Cache:    cache,
		Remote:   remote,
		Identity: identity.NewSession(cfg.UserID),
	})
	if t == nil {
		release()
		return nil, nil, err
	}
	if err != nil {
		logger.WarnContext(ctx, "Realtime sync unavailable, using cached data", "error", err)
	}
	closers = append(closers, t.Close)

	return t, release, nil
}

func runSummary(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	flags := flag.NewFlagSet("summary", flag.ContinueOnError)
	month := flags.String("month", "", "Month to summarize (YYYY-MM); defaults to the selected month")
	asJSON := flags.Bool("json", false, "Print the full state as JSON")
	if err := flags.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}

	t, release, err := openTracker(ctx, cfg)
	if err != nil {
		return err
	}
	defer release()

	if *month != "" {
		if err := t.SetSelectedMonth(ctx, *month); err != nil {
			return err
		}
	}

	state := t.State()
	if *asJSON {
		return writeJSON(out, state)
	}
	return printSummary(out, state)
}

func printSummary(out io.Writer, state tracker.State) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Month\t%s\t(%s)\n", state.Month, state.Mode)
	fmt.Fprintf(w, "Income\t%s\n", state.Summary.Income.StringFixed(2))
	fmt.Fprintf(w, "Expenses\t%s\n", state.Summary.Expenses.StringFixed(2))
	fmt.Fprintf(w, "Investments\t%s\n", state.Summary.Investments.StringFixed(2))
	fmt.Fprintf(w, "Balance\t%s\t%s\n", state.Summary.Balance.StringFixed(2), state.Alert)
	fmt.Fprintln(w)
	for _, entry := range state.CategoryBreakdown {
		fmt.Fprintf(w, "  %s\t%s\n", entry.Name, entry.Value.StringFixed(2))
	}
	fmt.Fprintln(w)
	for _, tx := range state.Transactions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			tx.Date.UTC().Format("2006-01-02"), tx.ID, tx.Type, tx.Amount.StringFixed(2), tx.Category, tx.Description)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}

func runAdd(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	flags := flag.NewFlagSet("add", flag.ContinueOnError)
	date := flags.String("date", "", "Transaction date (YYYY-MM-DD); defaults to today")
	description := flags.String("description", "", "Description")
	amount := flags.String("amount", "", "Amount, per installment when -installments is above 1")
	txType := flags.String("type", string(model.Expense), "income, expense or investment")
	categoryName := flags.String("category", "", "Category, required for expenses")
	installments := flags.Int("installments", 0, "Split into this many monthly installments")
	if err := flags.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}

	value, err := model.ParseAmount(*amount)
	if err != nil {
		return err
	}
	draft := model.TransactionDraft{
		Description:       *description,
		Amount:            value,
		Type:              model.TransactionType(strings.ToLower(*txType)),
		Category:          *categoryName,
		IsInstallment:     *installments > 1,
		InstallmentsCount: *installments,
	}
	if *date != "" {
		if draft.Date, err = parseDay(*date); err != nil {
			return err
		}
	}

	t, release, err := openTracker(ctx, cfg)
	if err != nil {
		return err
	}
	defer release()

	records, err := t.AddTransaction(ctx, draft)
	if err != nil {
		return err
	}
	for _, record := range records {
		fmt.Fprintln(out, record.ID)
	}
	return nil
}

func runEdit(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	flags := flag.NewFlagSet("edit", flag.ContinueOnError)
	id := flags.String("id", "", "Transaction id")
	date := flags.String("date", "", "New date (YYYY-MM-DD)")
	description := flags.String("description", "", "New description")
	amount := flags.String("amount", "", "New amount")
	txType := flags.String("type", "", "New type")
	categoryName := flags.String("category", "", "New category")
	if err := flags.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}
	if *id == "" {
		return model.ValidationError("id", "is required")
	}

	var patch model.TransactionPatch
	if *date != "" {
		day, err := parseDay(*date)
		if err != nil {
			return err
		}
		patch.Date = &day
	}
	if *description != "" {
		patch.Description = description
	}
	if *amount != "" {
		value, err := model.ParseAmount(*amount)
		if err != nil {
			return err
		}
		patch.Amount = &value
	}
	if *txType != "" {
		kind := model.TransactionType(strings.ToLower(*txType))
		patch.Type = &kind
	}
	if *categoryName != "" {
		patch.Category = categoryName
	}

	t, release, err := openTracker(ctx, cfg)
	if err != nil {
		return err
	}
	defer release()

	return t.EditTransaction(ctx, *id, patch)
}

func runRemove(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	id, err := parseID("remove", args)
	if err != nil {
		return err
	}
	t, release, err := openTracker(ctx, cfg)
	if err != nil {
		return err
	}
	defer release()
	return t.RemoveTransaction(ctx, id)
}

func runMonth(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	flags := flag.NewFlagSet("month", flag.ContinueOnError)
	set := flags.String("set", "", "Select this month (YYYY-MM)")
	shift := flags.Int("shift", 0, "Move the selected month by this many months")
	if err := flags.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}

	t, release, err := openTracker(ctx, cfg)
	if err != nil {
		return err
	}
	defer release()

	if *set != "" {
		if err := t.SetSelectedMonth(ctx, *set); err != nil {
			return err
		}
	}
	if *shift != 0 {
		if _, err := t.ShiftSelectedMonth(ctx, *shift); err != nil {
			return err
		}
	}
	fmt.Fprintln(out, t.SelectedMonth())
	return nil
}

func runAddGoal(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	flags := flag.NewFlagSet("add-goal", flag.ContinueOnError)
	name := flags.String("name", "", "Goal name")
	target := flags.String("target", "", "Target amount")
	current := flags.String("current", "0", "Amount already saved")
	deadline := flags.String("deadline", "", "Deadline (YYYY-MM-DD)")
	if err := flags.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}

	targetAmount, err := model.ParseAmount(*target)
	if err != nil {
		return err
	}
	currentAmount, err := model.ParseAmount(*current)
	if err != nil {
		return err
	}
	draft := model.GoalDraft{Name: *name, TargetAmount: targetAmount, CurrentAmount: currentAmount}
	if *deadline != "" {
		day, dayErr := parseDay(*deadline)
		if dayErr != nil {
			return dayErr
		}
		draft.Deadline = &day
	}

	t, release, err := openTracker(ctx, cfg)
	if err != nil {
		return err
	}
	defer release()

	goal, err := t.AddGoal(ctx, draft)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, goal.ID)
	return nil
}

func runRemoveGoal(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	id, err := parseID("remove-goal", args)
	if err != nil {
		return err
	}
	t, release, err := openTracker(ctx, cfg)
	if err != nil {
		return err
	}
	defer release()
	return t.RemoveGoal(ctx, id)
}

func runAddInvestment(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	flags := flag.NewFlagSet("add-investment", flag.ContinueOnError)
	name := flags.String("name", "", "Holding name")
	kind := flags.String("type", "", "Holding type, e.g. CDB or Ações")
	amount := flags.String("amount", "", "Current value")
	initial := flags.String("initial", "", "Amount invested; defaults to the current value")
	if err := flags.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}

	value, err := model.ParseAmount(*amount)
	if err != nil {
		return err
	}
	draft := model.InvestmentDraft{Name: *name, Type: *kind, Amount: value}
	if *initial != "" {
		invested, parseErr := model.ParseAmount(*initial)
		if parseErr != nil {
			return parseErr
		}
		draft.InitialAmount = &invested
	}

	t, release, err := openTracker(ctx, cfg)
	if err != nil {
		return err
	}
	defer release()

	investment, err := t.AddInvestment(ctx, draft)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, investment.ID)
	return nil
}

func runRemoveInvestment(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	id, err := parseID("remove-investment", args)
	if err != nil {
		return err
	}
	t, release, err := openTracker(ctx, cfg)
	if err != nil {
		return err
	}
	defer release()
	return t.RemoveInvestment(ctx, id)
}

func runAdvisorContext(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	flags := flag.NewFlagSet("advisor-context", flag.ContinueOnError)
	name := flags.String("name", "", "Name to greet the user by")
	if err := flags.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}

	t, release, err := openTracker(ctx, cfg)
	if err != nil {
		return err
	}
	defer release()
	return writeJSON(out, t.AdvisorContext(*name))
}

func runImport(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	flags := flag.NewFlagSet("import", flag.ContinueOnError)
	dir := flags.String("dir", cfg.UnprocessedDir, "Directory holding the CSV files to import")
	move := flags.Bool("move", cfg.MoveProcessedFiles, "Move imported files to the processed directory")
	if err := flags.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}

	t, release, err := openTracker(ctx, cfg)
	if err != nil {
		return err
	}
	defer release()

	importCfg := *cfg
	importCfg.UnprocessedDir = *dir
	importCfg.MoveProcessedFiles = *move
	sink := ingest.NewSink(ingest.SinkDependencies{Config: &importCfg, Recorder: t})

	stats, err := sink.Ingest(ctx)
	if err != nil {
		return err
	}
	if stats.FailedFiles > 0 {
		return fmt.Errorf("%d of %d files failed to import", stats.FailedFiles, stats.TotalFiles)
	}
	return nil
}

func runExport(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	flags := flag.NewFlagSet("export", flag.ContinueOnError)
	path := flags.String("out", "", "File to write; defaults to standard output")
	if err := flags.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}

	t, release, err := openTracker(ctx, cfg)
	if err != nil {
		return err
	}
	defer release()

	if *path == "" {
		return csvparser.WriteTransactions(out, t.State().AllTransactions)
	}
	file, err := os.Create(*path)
	if err != nil {
		return fmt.Errorf("failed to create file '%s': %w", *path, err)
	}
	writeErr := csvparser.WriteTransactions(file, t.State().AllTransactions)
	return errors.Join(writeErr, file.Close())
}

func runGenerateSyntheticData(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	open := func(ctx context.Context) (synthetic.Recorder, func(), error) {
		return openTracker(ctx, cfg)
	}
	return synthetic.RunGenerateSyntheticData(ctx, appcontext.LoggerFromContext(ctx), args, cfg, open)
}

func parseID(name string, args []string) (string, error) {
	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	id := flags.String("id", "", "Record id")
	if err := flags.Parse(args); err != nil {
		return "", fmt.Errorf("failed to parse flags: %w", err)
	}
	if *id == "" {
		return "", model.ValidationError("id", "is required")
	}
	return *id, nil
}

func parseDay(raw string) (time.Time, error) {
	day, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, model.ValidationError("date", fmt.Sprintf("%q is not YYYY-MM-DD", raw))
	}
	return day.UTC(), nil
}

func writeJSON(out io.Writer, value interface{}) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(value); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}
