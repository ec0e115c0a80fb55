package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"remindbot/internal/app/deps"
	"remindbot/internal/app/services"
	"remindbot/internal/config"
	"remindbot/internal/core/domain/bot"
	"remindbot/internal/core/domain/localtime"
	"remindbot/internal/core/domain/logging"
	"remindbot/internal/core/domain/reminder"
	recoverreminders "remindbot/internal/core/services/recover_reminders"
	deliveryguard "remindbot/internal/implementations/delivery_guard"
	pmetrics "remindbot/internal/implementations/metrics"
	ratelimiter "remindbot/internal/implementations/rate_limiter"
	randomstringgenerator "remindbot/internal/implementations/random_string_generator"
	reminderevents "remindbot/internal/implementations/reminder_events"
	reminderstore "remindbot/internal/implementations/reminder_store"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/r3labs/sse/v2"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	_ "time/tzdata"
)

const URL_SECRET = "url-secret"

type botSender struct {
	sent []bot.TelegramBotMessage
	lock sync.Mutex
}

func (s *botSender) SendTelegramBotMessage(ctx context.Context, m bot.TelegramBotMessage) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.sent = append(s.sent, m)
	return nil
}

func (s *botSender) Sent() []bot.TelegramBotMessage {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]bot.TelegramBotMessage(nil), s.sent...)
}

type testSuite struct {
	suite.Suite
	now      time.Time
	deps     *deps.Deps
	services *services.Services
	notifier *reminder.TestNotifier
	sender   *botSender
	router   http.Handler
}

func (suite *testSuite) SetupTest() {
	// 10:00 in New York on the day DST starts.
	suite.now = time.Date(2024, 3, 10, 14, 0, 0, 0, time.UTC)
	suite.notifier = reminder.NewTestNotifier()
	suite.sender = &botSender{}

	webAppURL, err := url.Parse("https://www.uzeluz.com")
	suite.Require().Nil(err)

	sseServer := sse.New()
	sseServer.AutoStream = false
	sseServer.AutoReplay = false
	registry := prometheus.NewRegistry()
	log := logging.NewFakeLogger()

	suite.deps = &deps.Deps{
		Config: &config.Config{
			AllowedOrigins:          []string{"*"},
			TelegramURLSecret:       URL_SECRET,
			WebAppURL:               *webAppURL,
			DestinationChatID:       "-100",
			DisplayZone:             localtime.DefaultZone,
			DisplayZoneAbbreviation: reminder.DefaultZoneAbbreviation,
		},
		Logger:                   log,
		SseServer:                sseServer,
		Registry:                 registry,
		Now:                      func() time.Time { return suite.now },
		Metrics:                  pmetrics.NewPrometheusSink(registry, log),
		Normalizer:               localtime.NewNormalizer(nil),
		Renderer:                 reminder.NewRenderer(reminder.DefaultZoneAbbreviation),
		ReminderStore:            reminderstore.NewMemoryStore(randomstringgenerator.NewGenerator()),
		DeliveryGuard:            deliveryguard.NewMemory(),
		EventPublisher:           reminderevents.NewFanout(reminderevents.NewSSE(sseServer)),
		TelegramBotMessageSender: suite.sender,
		ReminderNotifier:         suite.notifier,
	}
	suite.services = services.InitServices(suite.deps)
	suite.router = NewRouter(suite.deps, suite.services)
}

func (suite *testSuite) TearDownTest() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	suite.Require().Nil(suite.services.Scheduler.Stop(ctx))
	suite.deps.SseServer.Close()
}

func (suite *testSuite) do(method string, path string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rw := httptest.NewRecorder()
	suite.router.ServeHTTP(rw, req)
	return rw
}

func (suite *testSuite) TestReminderIsDeliveredExactlyOnce() {
	// Exercise ---
	rw := suite.do(http.MethodPost, "/reminders", `{"text":"Team sync","time":"2024-03-10T10:00:00"}`)

	// Verify ---
	assert := suite.Require()
	assert.Equal(http.StatusCreated, rw.Code)
	assert.Contains(rw.Body.String(), "Scheduled for: 2024-03-10 10:00:00 AM (EST)")

	assert.Eventually(func() bool { return len(suite.notifier.Calls()) == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(
		[]reminder.TestDelivery{{
			Destination: "-100",
			Text:        "🔔 Scheduled Reminder: Team sync\n🕒 Time: 2024-03-10 10:00:00 AM EST",
		}},
		suite.notifier.Calls(),
	)

	// Nothing else fires later.
	time.Sleep(50 * time.Millisecond)
	assert.Len(suite.notifier.Calls(), 1)
	assert.Equal(0, suite.services.Scheduler.Armed())
}

func (suite *testSuite) restart() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	suite.Require().Nil(suite.services.Scheduler.Stop(ctx))
	suite.services = services.InitServices(suite.deps)
	suite.router = NewRouter(suite.deps, suite.services)
}

func (suite *testSuite) TestRestartDoesNotRedeliverClaimedReminder() {
	// Setup ---
	assert := suite.Require()
	journal := reminder.NewTestJournal()
	journal.UpdateError = errors.New("journal is unavailable")
	ids := randomstringgenerator.NewGenerator()
	suite.deps.ReminderJournal = journal
	suite.deps.ReminderStore = reminderstore.NewJournaledStore(reminderstore.NewMemoryStore(ids), journal, suite.deps.Logger)
	suite.restart()

	rw := suite.do(http.MethodPost, "/reminders", `{"text":"Team sync","time":"2024-03-10T10:00:00"}`)
	assert.Equal(http.StatusCreated, rw.Code)
	assert.Eventually(func() bool { return len(suite.notifier.Calls()) == 1 }, time.Second, 10*time.Millisecond)

	// The fired status never reached the journal, only the claim did.
	suite.deps.ReminderStore = reminderstore.NewJournaledStore(reminderstore.NewMemoryStore(ids), journal, suite.deps.Logger)
	suite.deps.DeliveryGuard = deliveryguard.NewMemory()
	journal.Pending = journal.Saved
	suite.restart()

	// Exercise ---
	result, err := suite.services.RecoverReminders.Run(context.Background(), recoverreminders.Input{})

	// Verify ---
	assert.Nil(err)
	assert.Equal(recoverreminders.Result{Interrupted: 1}, result)
	assert.Equal(0, suite.services.Scheduler.Armed())
	time.Sleep(50 * time.Millisecond)
	assert.Len(suite.notifier.Calls(), 1)
}

func (suite *testSuite) TestJournalClaimErrorSkipsDelivery() {
	// Setup ---
	assert := suite.Require()
	journal := reminder.NewTestJournal()
	journal.ClaimError = errors.New("journal is unavailable")
	suite.deps.ReminderJournal = journal
	suite.deps.ReminderStore = reminderstore.NewJournaledStore(
		reminderstore.NewMemoryStore(randomstringgenerator.NewGenerator()),
		journal,
		suite.deps.Logger,
	)
	suite.restart()

	// Exercise ---
	rw := suite.do(http.MethodPost, "/reminders", `{"text":"Team sync","time":"2024-03-10T10:00:00"}`)

	// Verify ---
	assert.Equal(http.StatusCreated, rw.Code)
	assert.Eventually(func() bool { return suite.services.Scheduler.Armed() == 0 }, time.Second, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Empty(suite.notifier.Calls())
	assert.Len(journal.Saved, 1)
	record, err := suite.deps.ReminderStore.Get(context.Background(), journal.Saved[0].ID)
	assert.Nil(err)
	assert.Equal(reminder.StatusFailed, record.Status)
}

func (suite *testSuite) TestInvalidTimestampIsRejected() {
	rw := suite.do(http.MethodPost, "/reminders", `{"text":"Team sync","time":"tomorrow"}`)

	suite.Equal(http.StatusUnprocessableEntity, rw.Code)
	suite.JSONEq(`{"error":"invalid timestamp"}`, rw.Body.String())
	suite.Empty(suite.notifier.Calls())
}

func (suite *testSuite) TestTelegramWebAppSubmission() {
	// Exercise ---
	rw := suite.do(
		http.MethodPost,
		"/telegram/updates/"+URL_SECRET,
		`{"update_id":1,"message":{"chat":{"id":7},`+
			`"web_app_data":{"data":"{\"text\":\"Later\",\"time\":\"2024-03-10T18:30\"}"}}}`,
	)

	// Verify ---
	assert := suite.Require()
	assert.Equal(http.StatusOK, rw.Code)
	sent := suite.sender.Sent()
	assert.Len(sent, 1)
	assert.Equal(bot.TelegramChatID("7"), sent[0].ChatID)
	assert.Equal(
		"✅ Your reminder has been scheduled!\n\n📅 Reminder: Later\n🕒 Scheduled for: 2024-03-10 06:30:00 PM (EST)",
		sent[0].Text,
	)
	assert.Equal(1, suite.services.Scheduler.Armed())
	assert.Empty(suite.notifier.Calls())
}

func (suite *testSuite) TestSubmissionsAreRateLimited() {
	// Setup ---
	suite.deps.Config.SubmissionsPerMinute = 1
	suite.deps.RateLimiter = ratelimiter.NewMemory(suite.deps.Now)
	suite.services = services.InitServices(suite.deps)
	suite.router = NewRouter(suite.deps, suite.services)
	body := `{"text":"x","time":"2024-03-11T09:00:00"}`

	// Exercise ---
	first := suite.do(http.MethodPost, "/reminders", body)
	second := suite.do(http.MethodPost, "/reminders", body)

	// Verify ---
	suite.Equal(http.StatusCreated, first.Code)
	suite.Equal(http.StatusTooManyRequests, second.Code)
	suite.Equal(1, suite.services.Scheduler.Armed())
}

func (suite *testSuite) TestUnknownWebhookSecret() {
	rw := suite.do(http.MethodPost, "/telegram/updates/wrong", `{}`)

	suite.Equal(http.StatusNotFound, rw.Code)
}

func (suite *testSuite) TestHealthz() {
	rw := suite.do(http.MethodGet, "/healthz", "")

	suite.Equal(http.StatusOK, rw.Code)
	suite.JSONEq(`{"status":"ok"}`, rw.Body.String())
}

func (suite *testSuite) TestMetricsAreExposed() {
	suite.do(http.MethodPost, "/reminders", `{"text":"x","time":"2024-03-11T09:00:00"}`)

	rw := suite.do(http.MethodGet, "/metrics", "")

	suite.Equal(http.StatusOK, rw.Code)
	suite.Contains(rw.Body.String(), "remindbot_reminders_scheduled_total 1")
}

func TestApp(t *testing.T) {
	suite.Run(t, new(testSuite))
}

func TestNewRouterPanicsWithoutServices(t *testing.T) {
	require.Panics(t, func() { NewRouter(&deps.Deps{Config: &config.Config{}}, &services.Services{}) })
}
