// Package cli реализует интерактивную оболочку трекера: главное меню,
// меню авторизованного пользователя и ввод построчно из stdin.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/go-playground/validator"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/subscription-tracker/internal/catalog"
	"github.com/magabrotheeeer/subscription-tracker/internal/cli/response"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
	"github.com/magabrotheeeer/subscription-tracker/internal/services/auth"
	"github.com/magabrotheeeer/subscription-tracker/internal/services/subscription"
)

// AuthService регистрация, вход и список пользователей.
type AuthService interface {
	Register(ctx context.Context, username, password string) (int64, error)
	Authenticate(ctx context.Context, username, password string) (int64, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
}

// LedgerService операции журнала подписок.
type LedgerService interface {
	Plans(service string) []catalog.Plan
	CheckStart(startText string) error
	Add(ctx context.Context, userID int64, service, plan, startText, endText string) (int64, error)
	Delete(ctx context.Context, userID, id int64) (int64, error)
	Update(ctx context.Context, userID, id int64, startText, endText string) (int64, error)
	ListForUser(ctx context.Context, userID int64) ([]*models.Subscription, error)
	ListAll(ctx context.Context) ([]*models.Subscription, error)
	ExpiringToday(ctx context.Context, userID int64) ([]*models.Subscription, error)
}

// ReportService отчёт о выручке.
type ReportService interface {
	Revenue(ctx context.Context) ([]models.ServiceRevenue, error)
}

// Recorder учитывает выбранные пункты меню.
type Recorder interface {
	Observe(action string)
}

type nopRecorder struct{}

func (nopRecorder) Observe(string) {}

// Option настраивает Shell.
type Option func(*Shell)

// WithRecorder подключает учёт действий.
func WithRecorder(r Recorder) Option {
	return func(s *Shell) {
		if r != nil {
			s.rec = r
		}
	}
}

const (
	mainMenu = "\nOptions:\n" +
		"1. Register\n" +
		"2. Login\n" +
		"3. Display All Subscriptions\n" +
		"4. Display Registered Users\n" +
		"5. Generate Revenue Report\n" +
		"6. Exit\n"

	userMenu = "\nAuthenticated User Options:\n" +
		"1. Add Subscription\n" +
		"2. Delete Subscription\n" +
		"3. Display Subscriptions\n" +
		"4. Alert Expiring Subscriptions\n" +
		"5. Update Subscription\n" +
		"6. Logout\n"
)

const (
	msgInvalidChoice = "Invalid choice. Please try again."
	msgInvalidDate   = "Invalid date format. Use YYYY-MM-DD."
	msgInvalidID     = "Invalid subscription ID."
	msgStartTooOld   = "Invalid start date. Start date cannot be more than 9 months older than the present date."
	msgEndInPast     = "Invalid end date. End date cannot be earlier than the present day."
)

// Shell интерактивная оболочка. Не предназначена для одновременного использования.
type Shell struct {
	in       io.Reader
	out      io.Writer
	auth     AuthService
	ledger   LedgerService
	report   ReportService
	validate *validator.Validate
	rec      Recorder
	log      *slog.Logger

	lines <-chan string
}

// New создает оболочку, читающую команды из in и пишущую ответы в out.
func New(in io.Reader, out io.Writer, authSvc AuthService, ledger LedgerService, report ReportService, log *slog.Logger, opts ...Option) *Shell {
	s := &Shell{
		in:       in,
		out:      out,
		auth:     authSvc,
		ledger:   ledger,
		report:   report,
		validate: validator.New(),
		rec:      nopRecorder{},
		log:      log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run показывает главное меню, пока пользователь не выберет выход,
// ввод не закончится или ctx не будет отменён. Во всех трёх случаях
// возвращает nil; ошибка означает сбой, после которого продолжать нельзя.
func (s *Shell) Run(ctx context.Context) error {
	stop := make(chan struct{})
	defer close(stop)
	s.lines = readLines(s.in, stop)

	for {
		fmt.Fprint(s.out, mainMenu)
		choice, err := s.prompt(ctx, "Enter your choice: ")
		if err != nil {
			return ignoreStop(err)
		}

		switch choice {
		case "1":
			s.rec.Observe("register")
			err = s.register(ctx)
		case "2":
			s.rec.Observe("login")
			err = s.login(ctx)
		case "3":
			s.rec.Observe("list_all")
			err = s.listAll(ctx)
		case "4":
			s.rec.Observe("list_users")
			err = s.listUsers(ctx)
		case "5":
			s.rec.Observe("revenue_report")
			err = s.revenue(ctx)
		case "6":
			return nil
		default:
			s.println(msgInvalidChoice)
		}
		if err != nil {
			return ignoreStop(err)
		}
	}
}

func (s *Shell) register(ctx context.Context) error {
	creds, err := s.readCredentials(ctx)
	if err != nil || creds == nil {
		return err
	}

	_, err = s.auth.Register(ctx, creds.Username, creds.Password)
	switch {
	case errors.Is(err, auth.ErrUserExists):
		s.println("User is already registered.")
	case err != nil:
		return s.fail(err)
	default:
		s.println("User registered successfully!")
	}
	return nil
}

func (s *Shell) login(ctx context.Context) error {
	creds, err := s.readCredentials(ctx)
	if err != nil || creds == nil {
		return err
	}

	userID, err := s.auth.Authenticate(ctx, creds.Username, creds.Password)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		s.println("Invalid username or password.")
		return nil
	case err != nil:
		return s.fail(err)
	}

	s.println("Login successful!")
	return s.session(ctx, userID)
}

// readCredentials возвращает nil без ошибки, если ввод не прошёл валидацию.
func (s *Shell) readCredentials(ctx context.Context) (*models.DummyCredentials, error) {
	username, err := s.prompt(ctx, "Enter username: ")
	if err != nil {
		return nil, err
	}
	password, err := s.prompt(ctx, "Enter password: ")
	if err != nil {
		return nil, err
	}

	creds := &models.DummyCredentials{Username: username, Password: password}
	if !s.valid(creds) {
		return nil, nil
	}
	return creds, nil
}

// session меню авторизованного пользователя. Возвращается в главное меню после Logout.
func (s *Shell) session(ctx context.Context, userID int64) error {
	log := s.log.With(slog.String("session", uuid.NewString()), sl.UserID(userID))
	log.Info("session started")
	defer log.Info("session finished")

	for {
		fmt.Fprint(s.out, userMenu)
		choice, err := s.prompt(ctx, "Enter your choice: ")
		if err != nil {
			return err
		}

		switch choice {
		case "1":
			s.rec.Observe("add_subscription")
			err = s.addSubscription(ctx, userID)
		case "2":
			s.rec.Observe("delete_subscription")
			err = s.deleteSubscription(ctx, userID)
		case "3":
			s.rec.Observe("list_own")
			err = s.listOwn(ctx, userID)
		case "4":
			s.rec.Observe("alert_expiring")
			err = s.alertExpiring(ctx, userID)
		case "5":
			s.rec.Observe("update_subscription")
			err = s.updateSubscription(ctx, userID)
		case "6":
			s.println("Logged out successfully.")
			return nil
		default:
			s.println(msgInvalidChoice)
		}
		if err != nil {
			return err
		}
	}
}

func (s *Shell) addSubscription(ctx context.Context, userID int64) error {
	service, err := s.prompt(ctx, "Enter service name (e.g., Spotify, Netflix, Hotstar, etc.): ")
	if err != nil {
		return err
	}

	s.println("Available plans:")
	for _, line := range response.Plans(s.ledger.Plans(service)) {
		s.println(line)
	}

	plan, err := s.prompt(ctx, "Enter plan name: ")
	if err != nil {
		return err
	}

	start, err := s.prompt(ctx, "Enter subscription start date (YYYY-MM-DD): ")
	if err != nil {
		return err
	}
	if err := s.ledger.CheckStart(start); err != nil {
		return s.dateError(err)
	}

	end, err := s.prompt(ctx, "Enter subscription end date (YYYY-MM-DD): ")
	if err != nil {
		return err
	}

	input := &models.DummySubscription{ServiceName: service, PlanName: plan, StartDate: start, EndDate: end}
	if !s.valid(input) {
		return nil
	}

	if _, err := s.ledger.Add(ctx, userID, input.ServiceName, input.PlanName, input.StartDate, input.EndDate); err != nil {
		return s.dateError(err)
	}
	s.println("Subscription added successfully!")
	return nil
}

func (s *Shell) deleteSubscription(ctx context.Context, userID int64) error {
	id, ok, err := s.promptID(ctx, "Enter subscription ID to delete: ")
	if err != nil || !ok {
		return err
	}

	if _, err := s.ledger.Delete(ctx, userID, id); err != nil {
		return s.fail(err)
	}
	s.println("Subscription deleted successfully!")
	return nil
}

func (s *Shell) updateSubscription(ctx context.Context, userID int64) error {
	id, ok, err := s.promptID(ctx, "Enter subscription ID to update: ")
	if err != nil || !ok {
		return err
	}
	start, err := s.prompt(ctx, "Enter new subscription start date (YYYY-MM-DD): ")
	if err != nil {
		return err
	}
	end, err := s.prompt(ctx, "Enter new subscription end date (YYYY-MM-DD): ")
	if err != nil {
		return err
	}

	dates := &models.DummyDates{StartDate: start, EndDate: end}
	if !s.valid(dates) {
		return nil
	}

	if _, err := s.ledger.Update(ctx, userID, id, dates.StartDate, dates.EndDate); err != nil {
		return s.dateError(err)
	}
	s.println("Subscription updated successfully!")
	return nil
}

func (s *Shell) listOwn(ctx context.Context, userID int64) error {
	entries, err := s.ledger.ListForUser(ctx, userID)
	if err != nil {
		return s.fail(err)
	}
	s.println("Subscriptions:")
	s.printTable(response.Subscriptions(entries))
	return nil
}

func (s *Shell) listAll(ctx context.Context) error {
	entries, err := s.ledger.ListAll(ctx)
	if err != nil {
		return s.fail(err)
	}
	s.println("All Subscriptions:")
	s.printTable(response.Subscriptions(entries))
	return nil
}

func (s *Shell) listUsers(ctx context.Context) error {
	users, err := s.auth.ListUsers(ctx)
	if err != nil {
		return s.fail(err)
	}
	s.println("Registered Users:")
	s.printTable(response.Users(users))
	return nil
}

func (s *Shell) alertExpiring(ctx context.Context, userID int64) error {
	entries, err := s.ledger.ExpiringToday(ctx, userID)
	if err != nil {
		return s.fail(err)
	}
	if len(entries) == 0 {
		s.println("No subscriptions are expiring today.")
		return nil
	}
	s.println("Alert: The following subscriptions are expiring today:")
	s.printTable(response.Subscriptions(entries))
	return nil
}

func (s *Shell) revenue(ctx context.Context) error {
	rows, err := s.report.Revenue(ctx)
	if err != nil {
		return s.fail(err)
	}
	s.println("Revenue Report:")
	for _, r := range rows {
		s.println(response.Revenue(r))
	}
	return nil
}

// dateError печатает сообщение для ошибок проверки дат, остальные передаёт в fail.
func (s *Shell) dateError(err error) error {
	switch {
	case errors.Is(err, subscription.ErrInvalidDate):
		s.println(msgInvalidDate)
	case errors.Is(err, subscription.ErrStartTooOld):
		s.println(msgStartTooOld)
	case errors.Is(err, subscription.ErrEndInPast):
		s.println(msgEndInPast)
	default:
		return s.fail(err)
	}
	return nil
}

// fail печатает ошибку хранилища и оставляет оболочку работать.
// Остановка ввода и отмена контекста пробрасываются наверх.
func (s *Shell) fail(err error) error {
	if isStop(err) {
		return err
	}
	s.log.Error("operation failed", sl.Err(err))
	s.println("Error: " + err.Error())
	return nil
}

// valid печатает сообщения валидатора и возвращает false, если v не прошёл проверку.
func (s *Shell) valid(v any) bool {
	err := s.validate.Struct(v)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		s.println(response.ValidationError(verrs))
	} else {
		s.println("Error: " + err.Error())
	}
	return false
}

func (s *Shell) promptID(ctx context.Context, text string) (int64, bool, error) {
	raw, err := s.prompt(ctx, text)
	if err != nil {
		return 0, false, err
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		s.println(msgInvalidID)
		return 0, false, nil
	}
	return id, true, nil
}

// prompt печатает приглашение и ждёт следующую строку ввода.
// Возвращает io.EOF, когда ввод закончился, и ctx.Err() при отмене.
func (s *Shell) prompt(ctx context.Context, text string) (string, error) {
	fmt.Fprint(s.out, text)
	select {
	case <-ctx.Done():
		fmt.Fprintln(s.out)
		return "", ctx.Err()
	case line, ok := <-s.lines:
		if !ok {
			fmt.Fprintln(s.out)
			return "", io.EOF
		}
		return strings.TrimSpace(line), nil
	}
}

func (s *Shell) println(text string) {
	fmt.Fprintln(s.out, text)
}

func (s *Shell) printTable(table string) {
	if table != "" {
		fmt.Fprintln(s.out, table)
	}
}

// readLines читает in в отдельной горутине, чтобы ожидание ввода можно было
// прервать отменой контекста. Канал закрывается по концу ввода.
func readLines(in io.Reader, stop <-chan struct{}) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-stop:
				return
			}
		}
	}()
	return lines
}

func isStop(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func ignoreStop(err error) error {
	if isStop(err) {
		return nil
	}
	return err
}
