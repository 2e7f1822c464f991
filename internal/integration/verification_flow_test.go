package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"skillxintell/internal/app"
	"skillxintell/internal/config"
	"skillxintell/internal/database/seeder"
	"skillxintell/internal/pkg/logger"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type semanticResponse struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type authData struct {
	User struct {
		ID uuid.UUID `json:"id"`
	} `json:"user"`
	AccessToken string `json:"access_token"`
}

type skillData struct {
	Skill struct {
		ID                 uuid.UUID `json:"id"`
		Verified           bool      `json:"verified"`
		VerificationSource *string   `json:"verification_source"`
	} `json:"skill"`
}

type requestData struct {
	Request struct {
		ID         uuid.UUID `json:"id"`
		Status     string    `json:"status"`
		ReviewNote *string   `json:"review_note"`
	} `json:"request"`
	Created *bool `json:"created"`
}

type mentorsData struct {
	Mentors []struct {
		ID      uuid.UUID `json:"id"`
		Sectors []string  `json:"sectors"`
	} `json:"mentors"`
	Count int `json:"count"`
}

func TestIntegration_HL7SkillVerifiedByHealthcareMentor(t *testing.T) {
	cfg := testConfig(t)

	c, err := app.NewContainer(cfg, logger.Nop())
	if err != nil {
		t.Fatalf("container: %v", err)
	}
	defer func() { _ = c.Close() }()
	api := app.New(c).Fiber

	email := "it-" + uuid.NewString()[:8] + "@example.com"
	student := decodeAs[authData](t, call(t, api, "POST", "/api/auth/register", "", map[string]any{
		"email":     email,
		"password":  "password123",
		"full_name": "Integration Student",
	}), fiber.StatusCreated)
	defer cleanupUser(t, c, student.User.ID)

	mentorTok := decodeAs[authData](t, call(t, api, "POST", "/api/auth/login", "", map[string]any{
		"email":    "dr.rivera@skillx.dev",
		"password": seeder.DemoPassword,
	}), fiber.StatusOK).AccessToken
	mentorID := seeder.DemoUserID("dr.rivera@skillx.dev")

	mentors := decodeAs[mentorsData](t, call(t, api, "GET", "/api/verification/mentors?sector=healthcare", student.AccessToken, nil), fiber.StatusOK)
	if !containsMentor(mentors, mentorID) {
		t.Fatalf("mentors: expected %s in healthcare directory", mentorID)
	}
	if containsMentor(mentors, seeder.DemoUserID("farmer.lind@skillx.dev")) {
		t.Fatalf("mentors: unapproved mentor must not be listed")
	}

	sk := decodeAs[skillData](t, call(t, api, "POST", "/api/skills", student.AccessToken, map[string]any{
		"name":        "HL7 Integration",
		"sector":      "HEALTHCARE",
		"proficiency": 3,
	}), fiber.StatusCreated)
	if sk.Skill.Verified {
		t.Fatalf("skill: new skill must start unverified")
	}

	createPath := "/api/verification/skills/" + sk.Skill.ID.String() + "/requests"
	body := map[string]any{"reviewer_id": mentorID.String(), "message": "Please review my HL7 work"}
	first := decodeAs[requestData](t, call(t, api, "POST", createPath, student.AccessToken, body), fiber.StatusCreated)
	if first.Request.Status != "PENDING" {
		t.Fatalf("request: expected PENDING, got %s", first.Request.Status)
	}

	again := decodeAs[requestData](t, call(t, api, "POST", createPath, student.AccessToken, body), fiber.StatusOK)
	if again.Request.ID != first.Request.ID {
		t.Fatalf("request: expected the open request to be reused")
	}

	sr := call(t, api, "PATCH", "/api/verification/requests/"+first.Request.ID.String(), student.AccessToken, map[string]any{"status": "APPROVED"})
	if sr.Status != fiber.StatusForbidden {
		t.Fatalf("transition: requester must not decide, got %d", sr.Status)
	}

	decided := decodeAs[requestData](t, call(t, api, "PATCH", "/api/verification/requests/"+first.Request.ID.String(), mentorTok, map[string]any{
		"status": "APPROVED",
		"note":   "Solid interface engine work",
	}), fiber.StatusOK)
	if decided.Request.Status != "APPROVED" {
		t.Fatalf("transition: expected APPROVED, got %s", decided.Request.Status)
	}

	sr = call(t, api, "PATCH", "/api/verification/requests/"+first.Request.ID.String(), mentorTok, map[string]any{"status": "REJECTED"})
	if sr.Status != fiber.StatusConflict {
		t.Fatalf("transition: decided request must be final, got %d", sr.Status)
	}

	got := decodeAs[skillData](t, call(t, api, "GET", "/api/skills/"+sk.Skill.ID.String(), student.AccessToken, nil), fiber.StatusOK)
	if !got.Skill.Verified {
		t.Fatalf("skill: expected verified after approval")
	}
	if got.Skill.VerificationSource == nil || *got.Skill.VerificationSource != mentorID.String() {
		t.Fatalf("skill: expected verification source %s, got %v", mentorID, got.Skill.VerificationSource)
	}

	sr = call(t, api, "POST", createPath, student.AccessToken, body)
	if sr.Status != fiber.StatusConflict {
		t.Fatalf("request: verified skill must not accept new requests, got %d", sr.Status)
	}
}

func testConfig(t *testing.T) config.Config {
	t.Helper()

	host := stringsOrDefault(os.Getenv("SKILLX_TEST_DB_HOST"), os.Getenv("DB_HOST"))
	port := stringsOrDefault(os.Getenv("SKILLX_TEST_DB_PORT"), os.Getenv("DB_PORT"))
	name := stringsOrDefault(os.Getenv("SKILLX_TEST_DB_NAME"), os.Getenv("DB_NAME"))
	user := stringsOrDefault(os.Getenv("SKILLX_TEST_DB_USER"), os.Getenv("DB_USER"))
	pass := stringsOrDefault(os.Getenv("SKILLX_TEST_DB_PASSWORD"), os.Getenv("DB_PASSWORD"))
	ssl := stringsOrDefault(os.Getenv("SKILLX_TEST_DB_SSL_MODE"), "disable")

	if host == "" || port == "" || name == "" || user == "" {
		t.Skip("missing test DB env vars: set SKILLX_TEST_DB_HOST/PORT/NAME/USER/PASSWORD (or DB_HOST/DB_PORT/DB_NAME/DB_USER/DB_PASSWORD)")
	}

	return config.Config{
		App: config.AppConfig{AppName: "skillxintell", Environment: "test", HTTPPort: "0"},
		Database: config.DatabaseConfig{
			DBHost:         host,
			DBPort:         port,
			DBName:         name,
			DBUser:         user,
			DBPassword:     pass,
			DBSSLMode:      ssl,
			ConnectTimeout: 5 * time.Second,
			PoolMaxConns:   4,
			RunMigrations:  true,
			RunSeeders:     true,
		},
		JWT: config.JWTConfig{
			AccessSecret:     stringsOrDefault(os.Getenv("SKILLX_TEST_JWT_ACCESS_SECRET"), "test-access-secret"),
			RefreshSecret:    stringsOrDefault(os.Getenv("SKILLX_TEST_JWT_REFRESH_SECRET"), "test-refresh-secret"),
			AccessExpiresIn:  15 * time.Minute,
			RefreshExpiresIn: 24 * time.Hour,
		},
		Redis: config.RedisConfig{
			Host: stringsOrDefault(os.Getenv("SKILLX_TEST_REDIS_HOST"), "localhost"),
			Port: stringsOrDefault(os.Getenv("SKILLX_TEST_REDIS_PORT"), "6379"),
			TTL:  time.Minute,
		},
		Log: config.LogConfig{Level: "error"},
	}
}

func call(t *testing.T, api *fiber.App, method, path, token string, body any) semanticResponse {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("%s %s: encode body: %v", method, path, err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := api.Test(req, fiber.TestConfig{Timeout: 10 * time.Second})
	if err != nil {
		t.Fatalf("%s %s: request error: %v", method, path, err)
	}
	defer resp.Body.Close()

	var sr semanticResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		t.Fatalf("%s %s: decode error: %v", method, path, err)
	}
	return sr
}

func decodeAs[T any](t *testing.T, sr semanticResponse, wantStatus int) T {
	t.Helper()

	var out T
	if sr.Status != wantStatus {
		t.Fatalf("expected status=%d, got %d (message=%s)", wantStatus, sr.Status, sr.Message)
	}
	if err := json.Unmarshal(sr.Data, &out); err != nil {
		t.Fatalf("data unmarshal error: %v", err)
	}
	return out
}

func containsMentor(d mentorsData, id uuid.UUID) bool {
	for _, m := range d.Mentors {
		if m.ID == id {
			return true
		}
	}
	return false
}

func cleanupUser(t *testing.T, c *app.Container, userID uuid.UUID) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	c.Verification.Wait()

	_, _ = c.DB.Exec(ctx, `DELETE FROM verification_requests WHERE requester_id = $1`, userID)
	_, _ = c.DB.Exec(ctx, `DELETE FROM skills WHERE user_id = $1`, userID)
	_, _ = c.DB.Exec(ctx, `DELETE FROM mentor_profiles WHERE user_id = $1`, userID)
	_, _ = c.DB.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
}

func stringsOrDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
