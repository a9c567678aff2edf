package registrations

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	preflightErr    error
	registrantID    int64
	registrantErr   error
	registrationID  int64
	registrationErr error

	preflightCalls    int
	registrantCalls   int
	registrationCalls int
	gotNombre         string
	gotEmail          string
	gotTelefono       string
	gotRegistrantID   int64
	gotTallerID       int64
}

func (f *fakeStore) Preflight(ctx context.Context) error {
	f.preflightCalls++
	return f.preflightErr
}

func (f *fakeStore) UpsertRegistrant(ctx context.Context, nombre, email, telefono string) (int64, error) {
	f.registrantCalls++
	f.gotNombre, f.gotEmail, f.gotTelefono = nombre, email, telefono
	return f.registrantID, f.registrantErr
}

func (f *fakeStore) UpsertRegistration(ctx context.Context, registrantID, tallerID int64) (int64, error) {
	f.registrationCalls++
	f.gotRegistrantID, f.gotTallerID = registrantID, tallerID
	return f.registrationID, f.registrationErr
}

type fakeNotifier struct {
	calls          int
	registrationID int64
	registrantID   int64
	tallerID       int64
}

func (f *fakeNotifier) Notify(ctx context.Context, registrationID, registrantID, tallerID int64) {
	f.calls++
	f.registrationID, f.registrantID, f.tallerID = registrationID, registrantID, tallerID
}

func doRegister(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(http.MethodPost, "/api/register", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	h.Register(c)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestRegisterHappyPath(t *testing.T) {
	store := &fakeStore{registrantID: 7, registrationID: 99}
	notifier := &fakeNotifier{}
	h := NewHandler(store, notifier, nil, nil)

	w := doRegister(t, h, `{"name":"Ana","email":"ana@example.com","phone":"+57 300-123 4567","tallerId":3}`)

	assert.Equal(t, http.StatusOK, w.Code)
	out := decodeJSON(t, w)
	assert.Equal(t, true, out["success"])
	assert.Equal(t, "Registro exitoso", out["message"])
	data := out["data"].(map[string]any)
	assert.Equal(t, float64(7), data["usuario_id"])
	assert.Equal(t, float64(99), data["registro_id"])

	assert.Equal(t, "Ana", store.gotNombre)
	assert.Equal(t, "573001234567", store.gotTelefono, "phone is stored digits-only")
	assert.Equal(t, int64(7), store.gotRegistrantID)
	assert.Equal(t, int64(3), store.gotTallerID)

	assert.Equal(t, 1, notifier.calls)
	assert.Equal(t, int64(99), notifier.registrationID)
	assert.Equal(t, int64(7), notifier.registrantID)
	assert.Equal(t, int64(3), notifier.tallerID)
}

func TestRegisterAcceptsStringTallerID(t *testing.T) {
	store := &fakeStore{registrantID: 7, registrationID: 99}
	h := NewHandler(store, &fakeNotifier{}, nil, nil)

	w := doRegister(t, h, `{"name":"Ana","email":"ana@example.com","phone":"3001234567","tallerId":"3"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(3), store.gotTallerID)
}

func TestRegisterMissingFields(t *testing.T) {
	store := &fakeStore{}
	h := NewHandler(store, &fakeNotifier{}, nil, nil)

	w := doRegister(t, h, `{"email":"ana@example.com"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	out := decodeJSON(t, w)
	assert.Equal(t, "Campos requeridos faltantes", out["error"])
	assert.Equal(t, "name, phone, tallerId", out["details"])
	assert.Zero(t, store.preflightCalls, "validation failures never touch the database")
	assert.Zero(t, store.registrantCalls)
}

func TestRegisterPhoneWithoutDigits(t *testing.T) {
	store := &fakeStore{}
	h := NewHandler(store, &fakeNotifier{}, nil, nil)

	w := doRegister(t, h, `{"name":"Ana","email":"ana@example.com","phone":"---","tallerId":3}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	out := decodeJSON(t, w)
	assert.Equal(t, "Teléfono inválido", out["error"])
	assert.Zero(t, store.preflightCalls)
}

func TestRegisterRejectsBadTallerID(t *testing.T) {
	for _, raw := range []string{`"12.5"`, `"99999999999999"`, `"abc"`, `"-0.9"`} {
		t.Run(raw, func(t *testing.T) {
			store := &fakeStore{}
			h := NewHandler(store, &fakeNotifier{}, nil, nil)

			w := doRegister(t, h, `{"name":"Ana","email":"ana@example.com","phone":"3001234567","tallerId":`+raw+`}`)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			out := decodeJSON(t, w)
			assert.Equal(t, "ID de taller inválido", out["error"])
			assert.Zero(t, store.preflightCalls)
		})
	}
}

func TestRegisterPreflightFailure(t *testing.T) {
	store := &fakeStore{preflightErr: errors.New(`relation "usuarios" does not exist`)}
	notifier := &fakeNotifier{}
	h := NewHandler(store, notifier, nil, nil)

	w := doRegister(t, h, `{"name":"Ana","email":"ana@example.com","phone":"3001234567","tallerId":3}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	out := decodeJSON(t, w)
	assert.Equal(t, "Error de configuración", out["error"])
	assert.Equal(t, "las tablas de registro no están disponibles", out["details"])
	assert.Contains(t, out["technical"], "usuarios")
	assert.Zero(t, store.registrantCalls)
	assert.Zero(t, notifier.calls)
}

func TestRegisterRegistrantUpsertFailure(t *testing.T) {
	store := &fakeStore{registrantErr: errors.New("connection reset")}
	h := NewHandler(store, &fakeNotifier{}, nil, nil)

	w := doRegister(t, h, `{"name":"Ana","email":"ana@example.com","phone":"3001234567","tallerId":3}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	out := decodeJSON(t, w)
	assert.Equal(t, "Error al registrar usuario", out["error"])
	assert.Zero(t, store.registrationCalls)
}

func TestRegisterRegistrationUpsertFailure(t *testing.T) {
	store := &fakeStore{registrantID: 7, registrationErr: errors.New("deadlock detected")}
	notifier := &fakeNotifier{}
	h := NewHandler(store, notifier, nil, nil)

	w := doRegister(t, h, `{"name":"Ana","email":"ana@example.com","phone":"3001234567","tallerId":3}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	out := decodeJSON(t, w)
	assert.Equal(t, "Error al crear el registro", out["error"])
	assert.Zero(t, notifier.calls, "webhook never fires for an unpersisted registration")
}

func TestRegisterSucceedsWithoutNotifier(t *testing.T) {
	store := &fakeStore{registrantID: 7, registrationID: 99}
	h := NewHandler(store, nil, nil, nil)

	w := doRegister(t, h, `{"name":"Ana","email":"ana@example.com","phone":"3001234567","tallerId":3}`)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRegisterMalformedJSON(t *testing.T) {
	store := &fakeStore{}
	h := NewHandler(store, &fakeNotifier{}, nil, nil)

	w := doRegister(t, h, `{"name":`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, store.preflightCalls)
}
