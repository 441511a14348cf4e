package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tensorplex-labs/taskforge/internal/config"
	"github.com/tensorplex-labs/taskforge/internal/utils/logger"
)

// app carries the state shared by every subcommand once the root pre-run has
// loaded configuration.
type app struct {
	cfg   *config.AppConfig
	runID string

	debug, trace, info bool

	review      bool
	trackDepth  bool
	splitNested bool
	reportPath  string
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "taskforge",
		Short:         "Generate, split and template Java exercise code",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.BoolVar(&a.debug, "debug", false, "sets log level to debug")
	pf.BoolVar(&a.trace, "trace", false, "sets log level to trace")
	pf.BoolVar(&a.info, "info", false, "sets log level to info (default)")
	pf.String("env-file", ".env", "dotenv file to load before reading the environment")

	pf.String("solutions-dir", "", "solution units directory (SOLUTIONS_DIR)")
	pf.String("templates-dir", "", "template units directory (TEMPLATES_DIR)")
	pf.String("tests-dir", "", "test units directory (TESTS_DIR)")
	pf.String("ext", "", "unit file extension (UNIT_EXT)")
	pf.String("import-table", "", "YAML identifier to import table (IMPORT_TABLE_FILE)")
	pf.String("provider", "", "generator provider: openai or gemini (LLM_PROVIDER)")
	pf.String("model", "", "generation model (LLM_MODEL)")
	pf.String("review-model", "", "template review model (LLM_REVIEW_MODEL)")
	pf.Bool("commit", false, "commit written files (GIT_COMMIT)")
	pf.Bool("push", false, "push after committing (GIT_PUSH)")
	pf.String("branch", "", "branch to push (GIT_BRANCH)")

	pf.BoolVar(&a.trackDepth, "track-depth", false, "end a method body only when its delimiter depth returns to zero")
	pf.BoolVar(&a.splitNested, "split-nested", false, "start a new unit at every type declaration, nested ones included")
	pf.StringVar(&a.reportPath, "report", "", "write the run report as JSON to this path")

	root.AddCommand(
		newTaskCmd(a),
		newSolutionCmd(a),
		newTemplateCmd(a),
		newImproveCmd(a),
		newTestsCmd(a),
		newSplitCmd(a),
	)
	return root
}

// load reads .env and the environment, initialises logging and applies the
// flags the user set explicitly on top of the environment.
func (a *app) load(cmd *cobra.Command) error {
	envFile, _ := cmd.Flags().GetString("env-file")
	loaded, dotenvErr := config.LoadDotEnv(envFile)

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load environment configuration: %w", err)
	}
	a.cfg = cfg
	a.runID = logger.Init(logger.Options{
		Environment: cfg.Environment,
		Debug:       a.debug,
		Trace:       a.trace,
		Info:        a.info,
	})
	if dotenvErr != nil {
		log.Warn().Err(dotenvErr).Str("file", envFile).Msg("could not parse env file; continuing with existing environment")
	} else if !loaded {
		log.Debug().Str("file", envFile).Msg("env file not found; continuing with existing environment")
	}

	flags := cmd.Flags()
	overrideString(flags.Changed("solutions-dir"), flags.GetString, "solutions-dir", &cfg.SolutionsDir)
	overrideString(flags.Changed("templates-dir"), flags.GetString, "templates-dir", &cfg.TemplatesDir)
	overrideString(flags.Changed("tests-dir"), flags.GetString, "tests-dir", &cfg.TestsDir)
	overrideString(flags.Changed("ext"), flags.GetString, "ext", &cfg.UnitExt)
	overrideString(flags.Changed("import-table"), flags.GetString, "import-table", &cfg.ImportTableFile)
	overrideString(flags.Changed("provider"), flags.GetString, "provider", &cfg.Provider)
	overrideString(flags.Changed("model"), flags.GetString, "model", &cfg.Model)
	overrideString(flags.Changed("review-model"), flags.GetString, "review-model", &cfg.ReviewModel)
	overrideString(flags.Changed("branch"), flags.GetString, "branch", &cfg.Branch)
	if flags.Changed("commit") {
		cfg.Commit, _ = flags.GetBool("commit")
	}
	if flags.Changed("push") {
		cfg.Push, _ = flags.GetBool("push")
	}
	if cfg.Push && !cfg.Commit {
		log.Warn().Msg("push requested without commit; enabling commit")
		cfg.Commit = true
	}

	log.Debug().
		Str("command", cmd.Name()).
		Str("provider", cfg.Provider).
		Str("solutions_dir", cfg.SolutionsDir).
		Bool("commit", cfg.Commit).
		Msg("configuration loaded")
	return nil
}

func overrideString(changed bool, get func(string) (string, error), name string, dst *string) {
	if !changed {
		return
	}
	if v, err := get(name); err == nil {
		*dst = v
	}
}
