package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"skillxintell/internal/delivery/http/middleware"
	"skillxintell/internal/domain/mentor"
	"skillxintell/internal/domain/skill"
	"skillxintell/internal/domain/user"
	"skillxintell/internal/domain/verification"
	"skillxintell/internal/pkg/validator"
	"skillxintell/internal/usecase"
	ucverification "skillxintell/internal/usecase/verification"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type semanticResponse struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type fakeVerificationUC struct {
	createErr     error
	created       bool
	transitionErr error
	lastCaller    ucverification.Caller
	lastCreate    ucverification.CreateInput
	lastList      ucverification.ListInput
	lastTransit   ucverification.TransitionInput
	request       verification.Request
}

func (f *fakeVerificationUC) Create(_ context.Context, caller ucverification.Caller, in ucverification.CreateInput) (verification.Request, bool, error) {
	f.lastCaller = caller
	f.lastCreate = in
	if f.createErr != nil {
		return verification.Request{}, false, f.createErr
	}
	return f.request, f.created, nil
}

func (f *fakeVerificationUC) Transition(_ context.Context, caller ucverification.Caller, _ uuid.UUID, in ucverification.TransitionInput) (verification.Request, error) {
	f.lastCaller = caller
	f.lastTransit = in
	if f.transitionErr != nil {
		return verification.Request{}, f.transitionErr
	}
	out := f.request
	out.Status = verification.StatusApproved
	return out, nil
}

func (f *fakeVerificationUC) List(_ context.Context, caller ucverification.Caller, in ucverification.ListInput) (ucverification.ListResult, error) {
	f.lastCaller = caller
	f.lastList = in
	items := []verification.Detailed{{Request: f.request, SkillName: "HL7 Basics", RequesterName: "Sam"}}
	return ucverification.ListResult{Requests: items, Count: 1, Limit: ucverification.DefaultLimit, Offset: in.Offset}, nil
}

func (f *fakeVerificationUC) Get(_ context.Context, caller ucverification.Caller, _ uuid.UUID) (verification.Detailed, error) {
	f.lastCaller = caller
	return verification.Detailed{Request: f.request}, nil
}

type fakeSkillUC struct {
	createErr error
	lastIn    usecase.CreateSkillInput
}

func (f *fakeSkillUC) Create(_ context.Context, userID uuid.UUID, in usecase.CreateSkillInput) (skill.Skill, error) {
	f.lastIn = in
	if f.createErr != nil {
		return skill.Skill{}, f.createErr
	}
	return skill.Skill{ID: uuid.New(), UserID: userID, Name: in.Name, Sector: skill.Sector(in.Sector), Proficiency: in.Proficiency}, nil
}

func (f *fakeSkillUC) List(context.Context, uuid.UUID) ([]skill.Skill, error) { return nil, nil }

func (f *fakeSkillUC) Get(context.Context, uuid.UUID, uuid.UUID) (skill.Skill, error) {
	return skill.Skill{}, usecase.ErrSkillForbidden
}

func (f *fakeSkillUC) Update(context.Context, uuid.UUID, uuid.UUID, usecase.UpdateSkillInput) (skill.Skill, error) {
	return skill.Skill{}, usecase.ErrSkillLocked
}

type fakeMentorUC struct {
	lastSector string
}

func (f *fakeMentorUC) ListApproved(_ context.Context, sector string) ([]mentor.Mentor, error) {
	f.lastSector = sector
	if sector == "SPACE" {
		return nil, usecase.ErrInvalidInput
	}
	return []mentor.Mentor{{UserID: uuid.New(), FullName: "Dr. Rina", Sectors: []skill.Sector{skill.SectorHealthcare}}}, nil
}

func (f *fakeMentorUC) Approve(context.Context, string, []string) (mentor.Profile, error) {
	return mentor.Profile{}, nil
}

func (f *fakeMentorUC) Revoke(context.Context, string) error { return nil }

// newTestApp mounts routes behind a stub identity that reads X-Test-User and
// X-Test-Role, so handlers can be exercised without issuing tokens.
func newTestApp(t *testing.T, mount func(r fiber.Router)) *fiber.App {
	t.Helper()

	app := fiber.New()
	app.Use(middleware.NewErrorMiddleware(nil).Middleware())
	app.Use(func(c fiber.Ctx) error {
		if raw := c.Get("X-Test-User"); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				t.Fatalf("bad X-Test-User: %v", err)
			}
			role, _ := user.ParseRole(c.Get("X-Test-Role"))
			c.Locals(middleware.CtxUserIDKey, id)
			c.Locals(middleware.CtxRoleKey, role)
		}
		return c.Next()
	})
	mount(app.Group("/api"))
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any, userID uuid.UUID, role user.Role) semanticResponse {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != uuid.Nil {
		req.Header.Set("X-Test-User", userID.String())
		req.Header.Set("X-Test-Role", string(role))
	}

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var sr semanticResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		t.Fatalf("%s %s: decode: %v", method, path, err)
	}
	if sr.Status != resp.StatusCode {
		t.Fatalf("%s %s: envelope status %d != http status %d", method, path, sr.Status, resp.StatusCode)
	}
	return sr
}

func mountVerification(uc VerificationUsecase) func(r fiber.Router) {
	return func(r fiber.Router) {
		NewVerificationHandler(uc, validator.New()).RegisterRoutes(r.Group("/verification"))
	}
}

func TestVerificationHandler_Create(t *testing.T) {
	student := uuid.New()
	reviewer := uuid.New()
	skillID := uuid.New()
	uc := &fakeVerificationUC{
		created: true,
		request: verification.Request{ID: uuid.New(), SkillID: skillID, RequesterID: student, ReviewerID: reviewer, Status: verification.StatusPending},
	}
	app := newTestApp(t, mountVerification(uc))

	sr := doJSON(t, app, "POST", "/api/verification/skills/"+skillID.String()+"/requests", map[string]any{
		"reviewer_id":  reviewer.String(),
		"message":      "please review",
		"evidence_url": "https://certs.example.com/hl7",
	}, student, user.RoleStudent)

	if sr.Status != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", sr.Status, sr.Message)
	}
	var data struct {
		Request struct {
			ID     uuid.UUID `json:"id"`
			Status string    `json:"status"`
		} `json:"request"`
		Created bool `json:"created"`
	}
	if err := json.Unmarshal(sr.Data, &data); err != nil {
		t.Fatalf("unmarshal data: %v", err)
	}
	if data.Request.ID != uc.request.ID || data.Request.Status != "PENDING" || !data.Created {
		t.Fatalf("unexpected data: %+v", data)
	}
	if uc.lastCaller.UserID != student || uc.lastCaller.Role != user.RoleStudent {
		t.Fatalf("caller not forwarded: %+v", uc.lastCaller)
	}
	if uc.lastCreate.SkillID != skillID || uc.lastCreate.ReviewerID != reviewer {
		t.Fatalf("unexpected create input: %+v", uc.lastCreate)
	}
}

func TestVerificationHandler_CreateExistingReturns200(t *testing.T) {
	uc := &fakeVerificationUC{created: false, request: verification.Request{ID: uuid.New(), Status: verification.StatusPending}}
	app := newTestApp(t, mountVerification(uc))

	sr := doJSON(t, app, "POST", "/api/verification/skills/"+uuid.NewString()+"/requests",
		map[string]any{"reviewer_id": uuid.NewString()}, uuid.New(), user.RoleEmployee)
	if sr.Status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", sr.Status)
	}
}

func TestVerificationHandler_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not owner", ucverification.ErrNotSkillOwner, fiber.StatusForbidden},
		{"ineligible", ucverification.ErrReviewerIneligible, fiber.StatusForbidden},
		{"role", ucverification.ErrRoleCannotRequest, fiber.StatusForbidden},
		{"skill missing", ucverification.ErrSkillNotFound, fiber.StatusNotFound},
		{"reviewer missing", ucverification.ErrReviewerNotFound, fiber.StatusNotFound},
		{"verified", ucverification.ErrSkillAlreadyVerified, fiber.StatusConflict},
		{"internal", ucverification.ErrInternal, fiber.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newTestApp(t, mountVerification(&fakeVerificationUC{createErr: tc.err}))
			sr := doJSON(t, app, "POST", "/api/verification/skills/"+uuid.NewString()+"/requests",
				map[string]any{"reviewer_id": uuid.NewString()}, uuid.New(), user.RoleStudent)
			if sr.Status != tc.want {
				t.Fatalf("expected %d, got %d (%s)", tc.want, sr.Status, sr.Message)
			}
			if sr.Message == "" {
				t.Fatalf("expected a human-readable message")
			}
		})
	}
}

func TestVerificationHandler_CreateValidation(t *testing.T) {
	app := newTestApp(t, mountVerification(&fakeVerificationUC{}))

	sr := doJSON(t, app, "POST", "/api/verification/skills/"+uuid.NewString()+"/requests",
		map[string]any{"reviewer_id": "nope", "evidence_url": "ftp://files.example.com/x"}, uuid.New(), user.RoleStudent)
	if sr.Status != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", sr.Status)
	}
	var fields map[string]string
	if err := json.Unmarshal(sr.Data, &fields); err != nil {
		t.Fatalf("unmarshal data: %v", err)
	}
	if fields["reviewer_id"] == "" || fields["evidence_url"] == "" {
		t.Fatalf("expected field errors, got %v", fields)
	}
}

func TestVerificationHandler_TransitionConflict(t *testing.T) {
	uc := &fakeVerificationUC{transitionErr: ucverification.ErrRequestNotPending}
	app := newTestApp(t, mountVerification(uc))

	sr := doJSON(t, app, "PATCH", "/api/verification/requests/"+uuid.NewString(),
		map[string]any{"status": "APPROVED"}, uuid.New(), user.RoleEducator)
	if sr.Status != fiber.StatusConflict {
		t.Fatalf("expected 409, got %d", sr.Status)
	}

	uc.transitionErr = ucverification.ErrNotReviewer
	sr = doJSON(t, app, "PATCH", "/api/verification/requests/"+uuid.NewString(),
		map[string]any{"status": "REJECTED", "note": "missing certificate"}, uuid.New(), user.RoleEducator)
	if sr.Status != fiber.StatusForbidden {
		t.Fatalf("expected 403, got %d", sr.Status)
	}
	if uc.lastTransit.Note == nil || *uc.lastTransit.Note != "missing certificate" {
		t.Fatalf("note not forwarded: %+v", uc.lastTransit)
	}

	sr = doJSON(t, app, "PATCH", "/api/verification/requests/"+uuid.NewString(),
		map[string]any{"status": "PENDING"}, uuid.New(), user.RoleEducator)
	if sr.Status != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for non-terminal status, got %d", sr.Status)
	}
}

func TestVerificationHandler_ListReceived(t *testing.T) {
	uc := &fakeVerificationUC{request: verification.Request{ID: uuid.New(), Status: verification.StatusPending}}
	app := newTestApp(t, mountVerification(uc))

	sr := doJSON(t, app, "GET", "/api/verification/requests/received?status=PENDING&offset=5", nil, uuid.New(), user.RoleEducator)
	if sr.Status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", sr.Status, sr.Message)
	}
	if uc.lastList.Box != "received" || uc.lastList.Status != "PENDING" || uc.lastList.Offset != 5 {
		t.Fatalf("unexpected list input: %+v", uc.lastList)
	}

	var data struct {
		Requests []struct {
			ID        uuid.UUID `json:"id"`
			SkillName string    `json:"skill_name"`
		} `json:"requests"`
		Count int `json:"count"`
	}
	if err := json.Unmarshal(sr.Data, &data); err != nil {
		t.Fatalf("unmarshal data: %v", err)
	}
	if data.Count != 1 || len(data.Requests) != 1 || data.Requests[0].SkillName != "HL7 Basics" {
		t.Fatalf("unexpected data: %+v", data)
	}
}

func TestVerificationHandler_RequiresIdentity(t *testing.T) {
	app := newTestApp(t, mountVerification(&fakeVerificationUC{}))
	sr := doJSON(t, app, "GET", "/api/verification/requests/sent", nil, uuid.Nil, "")
	if sr.Status != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", sr.Status)
	}
}

func TestSkillHandler(t *testing.T) {
	uc := &fakeSkillUC{}
	app := newTestApp(t, func(r fiber.Router) {
		NewSkillHandler(uc, validator.New()).RegisterRoutes(r.Group("/skills"))
	})
	owner := uuid.New()

	sr := doJSON(t, app, "POST", "/api/skills", map[string]any{
		"name": "HL7 Basics", "sector": "HEALTHCARE", "category": "Interoperability", "proficiency": 3,
	}, owner, user.RoleStudent)
	if sr.Status != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", sr.Status, sr.Message)
	}
	var data struct {
		Skill struct {
			Name     string `json:"name"`
			Verified bool   `json:"verified"`
		} `json:"skill"`
	}
	if err := json.Unmarshal(sr.Data, &data); err != nil {
		t.Fatalf("unmarshal data: %v", err)
	}
	if data.Skill.Name != "HL7 Basics" || data.Skill.Verified {
		t.Fatalf("unexpected skill: %+v", data.Skill)
	}

	sr = doJSON(t, app, "POST", "/api/skills", map[string]any{"name": "X", "sector": "SPACE", "proficiency": 9}, owner, user.RoleStudent)
	if sr.Status != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", sr.Status)
	}

	sr = doJSON(t, app, "GET", "/api/skills/"+uuid.NewString(), nil, owner, user.RoleStudent)
	if sr.Status != fiber.StatusForbidden {
		t.Fatalf("expected 403, got %d", sr.Status)
	}

	sr = doJSON(t, app, "PATCH", "/api/skills/"+uuid.NewString(), map[string]any{"name": "FHIR"}, owner, user.RoleStudent)
	if sr.Status != fiber.StatusConflict {
		t.Fatalf("expected 409, got %d", sr.Status)
	}
}

func TestMentorHandler(t *testing.T) {
	uc := &fakeMentorUC{}
	app := newTestApp(t, func(r fiber.Router) {
		NewMentorHandler(uc).RegisterRoutes(r.Group("/verification"))
	})

	sr := doJSON(t, app, "GET", "/api/verification/mentors?sector=HEALTHCARE", nil, uuid.New(), user.RoleStudent)
	if sr.Status != fiber.StatusOK || uc.lastSector != "HEALTHCARE" {
		t.Fatalf("unexpected response %d, sector=%q", sr.Status, uc.lastSector)
	}
	var data struct {
		Mentors []struct {
			FullName string   `json:"full_name"`
			Sectors  []string `json:"sectors"`
		} `json:"mentors"`
		Count int `json:"count"`
	}
	if err := json.Unmarshal(sr.Data, &data); err != nil {
		t.Fatalf("unmarshal data: %v", err)
	}
	if data.Count != 1 || data.Mentors[0].Sectors[0] != "HEALTHCARE" {
		t.Fatalf("unexpected data: %+v", data)
	}

	sr = doJSON(t, app, "GET", "/api/verification/mentors?sector=SPACE", nil, uuid.New(), user.RoleStudent)
	if sr.Status != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", sr.Status)
	}
}
