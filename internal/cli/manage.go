package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/ericfisherdev/simplekeystore/internal/application"
	"github.com/ericfisherdev/simplekeystore/internal/domain/model"
)

// Menu choices of the interactive manager.
const (
	choiceAdd         = "N"
	choiceListAll     = "A"
	choiceListSession = "S"
	choiceDelete      = "D"
	choiceExit        = "X"
)

type menuOption struct {
	Label string
	Value string
}

// prompter asks the user questions. Input starts from defaultValue, which the
// user may accept, edit or clear.
type prompter interface {
	Menu(title string, options []menuOption) (string, error)
	Input(title, defaultValue string, required bool) (string, error)
	Secret(title string) (string, error)
	Confirm(title string, defaultValue bool) (bool, error)
}

func newManageCommand(deps commandDeps) *cobra.Command {
	var noCarry bool
	cmd := &cobra.Command{
		Use:   "manage",
		Short: "Add, list and delete keys interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(cmd, deps, func(ctx context.Context, s *session) error {
				m := &manager{
					keys:      s.keys,
					prompt:    deps.prompter,
					out:       deps.out,
					now:       deps.clock,
					storeName: s.cfg.Store.Name,
					carry:     !noCarry,
				}
				return m.run(ctx)
			})
		},
	}
	cmd.Flags().BoolVar(&noCarry, "no-carry", false, "Do not reuse the previous answers as defaults for the next key")
	return cmd
}

// addAnswers are the text answers for one new key, kept to prefill the next.
type addAnswers struct {
	name    string
	batch   string
	source  string
	login   string
	expires string
	active  bool
}

type manager struct {
	keys      *application.KeyService
	prompt    prompter
	out       io.Writer
	now       func() time.Time
	storeName string
	carry     bool

	created  []model.KeyRecord
	defaults addAnswers
}

func (m *manager) run(ctx context.Context) error {
	m.defaults.active = true

	for {
		total, err := m.keys.Count(ctx)
		if err != nil {
			return err
		}

		choice, err := m.prompt.Menu("What would you like to do?", []menuOption{
			{Label: fmt.Sprintf("[N] Add new key to %s", m.storeName), Value: choiceAdd},
			{Label: fmt.Sprintf("[A] List all %d keys in %s", total, m.storeName), Value: choiceListAll},
			{Label: fmt.Sprintf("[S] List the %d keys created this session", len(m.created)), Value: choiceListSession},
			{Label: "[D] Delete a key", Value: choiceDelete},
			{Label: "[X] Exit", Value: choiceExit},
		})
		if errors.Is(err, huh.ErrUserAborted) {
			return nil
		}
		if err != nil {
			return err
		}

		switch strings.ToUpper(strings.TrimSpace(choice)) {
		case choiceAdd:
			if err := m.addOne(ctx); err != nil {
				if errors.Is(err, huh.ErrUserAborted) {
					return nil
				}
				if !isRecoverable(err) {
					return err
				}
				printError(m.out, err)
				continue
			}
			m.println(Tabulate(m.created, DefaultHeaders, false))
		case choiceListAll:
			all, err := m.keys.List(ctx, model.KeyFilter{}, nil)
			if err != nil {
				return err
			}
			m.println("All records in " + m.storeName)
			m.println(Tabulate(all, DefaultHeaders, false))
		case choiceListSession:
			m.println("Records created this session in " + m.storeName)
			m.println(Tabulate(m.created, DefaultHeaders, false))
		case choiceDelete:
			if err := m.deleteOne(ctx); err != nil {
				return err
			}
		case choiceExit, "":
			return nil
		}
	}
}

func (m *manager) addOne(ctx context.Context) error {
	var (
		answers = m.defaults
		err     error
	)

	if answers.name, err = m.prompt.Input("Name", m.defaults.name, true); err != nil {
		return err
	}
	secret, err := m.prompt.Secret("Key")
	if err != nil {
		return err
	}
	if answers.batch, err = m.prompt.Input("Batch", m.defaults.batch, false); err != nil {
		return err
	}
	if answers.source, err = m.prompt.Input("Source", m.defaults.source, false); err != nil {
		return err
	}
	if answers.login, err = m.prompt.Input("Login", m.defaults.login, false); err != nil {
		return err
	}
	if answers.active, err = m.prompt.Confirm("Is the key active?", m.defaults.active); err != nil {
		return err
	}

	var expiration *int64
	for {
		answers.expires, err = m.prompt.Input("Expiration in days, or a date (YYYY-MM-DD)", m.defaults.expires, false)
		if err != nil {
			return err
		}
		expiration, err = ParseExpiration(answers.expires, m.now())
		if err == nil {
			break
		}
		printError(m.out, err)
	}

	newKey := model.NewKeyDefaults(answers.name, secret)
	newKey.Active = answers.active
	newKey.ExpirationEpochSeconds = expiration
	newKey.Batch = nonEmpty(answers.batch)
	newKey.Source = nonEmpty(answers.source)
	newKey.Login = nonEmpty(answers.login)

	id, err := m.keys.Add(ctx, newKey)
	if err != nil {
		return err
	}
	rec, err := m.keys.Get(ctx, id)
	if err != nil {
		return err
	}

	m.created = append(m.created, *rec)
	if m.carry {
		m.defaults = answers
	}
	return nil
}

func (m *manager) deleteOne(ctx context.Context) error {
	secret, err := m.prompt.Secret("Enter the key that should be deleted")
	if err != nil {
		return err
	}
	count, err := m.keys.DeleteByKey(ctx, secret)
	if err != nil {
		return err
	}
	m.println(fmt.Sprintf("%d keys deleted.", count))
	return nil
}

func (m *manager) println(s string) {
	_, _ = fmt.Fprintln(m.out, s)
}

// isRecoverable reports whether the manager can keep going after err.
func isRecoverable(err error) bool {
	return errors.Is(err, model.ErrValidation) || errors.Is(err, model.ErrUniqueness)
}

func nonEmpty(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

// huhPrompter asks through charmbracelet/huh forms on the terminal.
type huhPrompter struct{}

func newHuhPrompter() huhPrompter {
	return huhPrompter{}
}

func (huhPrompter) Menu(title string, options []menuOption) (string, error) {
	choice := choiceExit
	opts := make([]huh.Option[string], 0, len(options))
	for _, o := range options {
		opts = append(opts, huh.NewOption(o.Label, o.Value))
	}
	err := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().Title(title).Options(opts...).Value(&choice),
	)).Run()
	return choice, err
}

func (huhPrompter) Input(title, defaultValue string, required bool) (string, error) {
	value := defaultValue
	input := huh.NewInput().Title(title).Value(&value)
	if required {
		input = input.Validate(func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errors.New("required field, please enter a value")
			}
			return nil
		})
	}
	err := huh.NewForm(huh.NewGroup(input)).Run()
	return value, err
}

func (huhPrompter) Secret(title string) (string, error) {
	var value string
	err := huh.NewForm(huh.NewGroup(
		huh.NewInput().Title(title).EchoMode(huh.EchoModePassword).Value(&value).
			Validate(func(s string) error {
				if s == "" {
					return errors.New("required field, please enter a value")
				}
				return nil
			}),
	)).Run()
	return value, err
}

func (huhPrompter) Confirm(title string, defaultValue bool) (bool, error) {
	value := defaultValue
	err := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().Title(title).Affirmative("Yes").Negative("No").Value(&value),
	)).Run()
	return value, err
}
