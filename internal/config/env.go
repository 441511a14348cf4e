// Package config defines environment configuration structs and loaders.
package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type AppConfig struct {
	GeneratorEnvConfig
	OutputEnvConfig
	GitEnvConfig
	TaskEnvConfig

	Environment string `env:"ENVIRONMENT" envDefault:"prod"`
}

func LoadConfig() (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// GeneratorEnvConfig selects and configures the generative text service.
type GeneratorEnvConfig struct {
	Provider      string        `env:"LLM_PROVIDER" envDefault:"openai"`
	OpenAIAPIKey  string        `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string        `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1"`
	GeminiAPIKey  string        `env:"GEMINI_API_KEY"`
	Model         string        `env:"LLM_MODEL" envDefault:"o1-mini"`
	ReviewModel   string        `env:"LLM_REVIEW_MODEL" envDefault:"gpt-4"`
	MaxAttempts   int           `env:"LLM_MAX_ATTEMPTS" envDefault:"3"`
	ClientTimeout time.Duration `env:"CLIENT_TIMEOUT" envDefault:"120s"`
}

// OutputEnvConfig holds input and output locations.
type OutputEnvConfig struct {
	TaskFile        string `env:"TASK_FILE" envDefault:"tasks/new_task.md"`
	SolutionsDir    string `env:"SOLUTIONS_DIR" envDefault:".hidden_tasks"`
	TemplatesDir    string `env:"TEMPLATES_DIR" envDefault:"gen_src"`
	TestsDir        string `env:"TESTS_DIR" envDefault:"gen_test"`
	UnitExt         string `env:"UNIT_EXT" envDefault:".java"`
	ImportTableFile string `env:"IMPORT_TABLE_FILE"`
}

// GitEnvConfig configures the version-control sink.
type GitEnvConfig struct {
	Commit    bool   `env:"GIT_COMMIT" envDefault:"false"`
	Push      bool   `env:"GIT_PUSH" envDefault:"false"`
	Branch    string `env:"GIT_BRANCH"`
	Remote    string `env:"GIT_REMOTE" envDefault:"origin"`
	UserName  string `env:"GIT_USER_NAME" envDefault:"github-actions"`
	UserEmail string `env:"GIT_USER_EMAIL" envDefault:"actions@github.com"`
	WorkDir   string `env:"GIT_WORKDIR" envDefault:"."`
}

// TaskEnvConfig seeds the task description run.
type TaskEnvConfig struct {
	Theme         string   `env:"TASK_THEME" envDefault:"Create a basic Java application with the following requirements."`
	Language      string   `env:"TASK_LANGUAGE" envDefault:"English"`
	LearningGoals []string `env:"TASK_LEARNING_GOALS" envSeparator:";" envDefault:"Designing Java classes;Adding instance fields;Adding a constructor method;Creating *getters* and *setters*;Printing to the terminal;Using the main method;Scope (or *variable shadowing*)"`
}
