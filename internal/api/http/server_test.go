package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"madrasa-backend/internal/domain"
	"madrasa-backend/internal/security"
	"madrasa-backend/internal/service"
)

type stubPaymentService struct {
	details func(familyID int32) (*domain.PaymentDetails, error)
	addLine func(familyID, createdBy int32, in service.PaymentLineInput) (*service.LineMutation, error)
}

func (s *stubPaymentService) GetDetails(_ context.Context, familyID int32) (*domain.PaymentDetails, error) {
	return s.details(familyID)
}

func (s *stubPaymentService) AddLine(_ context.Context, familyID, createdBy int32, in service.PaymentLineInput) (*service.LineMutation, error) {
	return s.addLine(familyID, createdBy, in)
}

func (s *stubPaymentService) ModifyLine(context.Context, int32, int32, int32, service.PaymentLineUpdate) (*service.LineMutation, error) {
	return nil, domain.ErrNotFound
}

func (s *stubPaymentService) DeleteLine(context.Context, int32, int32) (*service.LineMutation, error) {
	return nil, domain.ErrNotFound
}

func testServer(t *testing.T, payment service.PaymentService) (http.Handler, string) {
	t.Helper()
	tokens := security.NewTokenManager("0123456789abcdef0123456789abcdef", 60)
	token, err := tokens.GenerateAccessToken(7, 1, "staff@test.com")
	assert.NoError(t, err)

	srv := NewServer("127.0.0.1:0", &Services{Payment: payment}, tokens)
	return srv.Handler(), token
}

func TestPaymentEndpoints(t *testing.T) {
	stub := &stubPaymentService{
		details: func(familyID int32) (*domain.PaymentDetails, error) {
			if familyID != 1 {
				return nil, domain.ErrNotFound
			}
			return &domain.PaymentDetails{
				MontantTotal: 300,
				MontantPaye:  100,
				ResteAPayer:  200,
				Tarifs:       &domain.FamilyTarifs{IDFamille: 1},
			}, nil
		},
		addLine: func(familyID, createdBy int32, in service.PaymentLineInput) (*service.LineMutation, error) {
			if in.Montant > 200 {
				return nil, domain.ErrOverpayment
			}
			return &service.LineMutation{
				Ligne:        &domain.LignePaiement{ID: 2, Type: domain.PaymentType(in.Type), Montant: in.Montant, CreatedBy: createdBy},
				NouveauTotal: 100 + in.Montant,
				ResteAPayer:  200 - in.Montant,
			}, nil
		},
	}
	handler, token := testServer(t, stub)

	t.Run("RequiresBearerToken", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/familles/1/paiement", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("GetDetails", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/familles/1/paiement", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var body struct {
			Status string                `json:"status"`
			Data   domain.PaymentDetails `json:"data"`
		}
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "success", body.Status)
		assert.Equal(t, int32(200), body.Data.ResteAPayer)
	})

	t.Run("UnknownFamilyIs404", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/familles/42/paiement", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("AddLine", func(t *testing.T) {
		payload := `{"type":"espece","montant":150}`
		req := httptest.NewRequest(http.MethodPost, "/api/familles/1/paiement/lignes", strings.NewReader(payload))
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		var body struct {
			Data service.LineMutation `json:"data"`
		}
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, int32(250), body.Data.NouveauTotal)
		assert.Equal(t, int32(50), body.Data.ResteAPayer)
		// The authenticated user is recorded as the line author.
		assert.Equal(t, int32(7), body.Data.Ligne.CreatedBy)
	})

	t.Run("OverpaymentIs422", func(t *testing.T) {
		payload := `{"type":"espece","montant":500}`
		req := httptest.NewRequest(http.MethodPost, "/api/familles/1/paiement/lignes", strings.NewReader(payload))
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		var body struct {
			Status  string `json:"status"`
			Message string `json:"message"`
		}
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "error", body.Status)
		assert.Contains(t, body.Message, "dépasserait")
	})

	t.Run("BadFamilyIDIs400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/familles/abc/paiement", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("HealthIsPublic", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
