package upstream

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"hospitalhr/internal/domain/auth"
	"hospitalhr/internal/domain/identity"
	"hospitalhr/internal/domain/records"
	"hospitalhr/internal/requestctx"
)

type staticToken string

func (s staticToken) Token(context.Context) (string, error) { return string(s), nil }

func newServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestClientAcceptsBareAndWrappedBodies(t *testing.T) {
	for name, body := range map[string]string{
		"bare":    `[{"application_id": 7, "candidate_name": "Asha", "employee_code": "EMP001"}]`,
		"wrapped": `{"data": [{"application_id": "7", "candidate_name": "Asha", "employee_code": "EMP001"}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/onboarding/list" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				_, _ = io.WriteString(w, body)
			})
			apps, err := NewOnboardingClient(srv.URL, time.Second, nil).ListApplications(context.Background())
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(apps) != 1 || apps[0].ApplicationID.String() != "7" || apps[0].EmployeeCode != "EMP001" {
				t.Fatalf("unexpected apps %+v", apps)
			}
		})
	}
}

func TestClientSendsBearerToken(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Errorf("unexpected authorization %q", got)
		}
		if r.URL.Path != "/users/hospital/list" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = io.WriteString(w, `[{"id": 42, "name": "Ravi", "employee_code": "EMP042"}]`)
	})
	users, err := NewUserClient(srv.URL, time.Second, staticToken("tok-1")).ListUsers(context.Background(), "hospital")
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 1 || users[0].ID.String() != "42" || !users[0].IsEmployee() {
		t.Fatalf("unexpected users %+v", users)
	}
}

func TestClientStatusErrors(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/missing/list") {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "boom", http.StatusBadGateway)
	})
	client := NewUserClient(srv.URL, time.Second, nil)

	if _, err := client.ListUsers(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	_, err := client.ListUsers(context.Background(), "hospital")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.StatusCode != http.StatusBadGateway || statusErr.Source != SourceUserManagement || statusErr.Body != "boom" {
		t.Fatalf("unexpected status error %+v", statusErr)
	}
}

func TestClientRejectsMalformedJSON(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"data": [`)
	})
	if _, err := NewOnboardingClient(srv.URL, time.Second, nil).ListApplications(context.Background()); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestRecordClientEntities(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/entity/education/EMP001":
			_, _ = io.WriteString(w, `{"data": {"id": 1, "degree": "MBBS", "certificate_file": "blob/edu/1.pdf"}}`)
		case "/entity/experience/EMP001":
			http.NotFound(w, r)
		case "/entity/medical/EMP001":
			_, _ = io.WriteString(w, `[{"id": 3, "certificate_name": "fitness.pdf", "licenses": [{"license_type": "Nursing", "license_number": "N-1", "expiry_date": "2024-06-15"}]}]`)
		case "/entity/medical/EMP404":
			_, _ = io.WriteString(w, `[]`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})
	client := NewRecordClient(srv.URL, time.Second, nil)
	ctx := context.Background()

	education, err := client.ListEducation(ctx, "EMP001")
	if err != nil || len(education) != 1 || education[0].Degree != "MBBS" {
		t.Fatalf("unexpected education %+v %v", education, err)
	}

	experience, err := client.ListExperience(ctx, "EMP001")
	if err != nil || len(experience) != 0 {
		t.Fatalf("expected empty experience on 404, got %+v %v", experience, err)
	}

	medical, err := client.GetMedical(ctx, "EMP001")
	if err != nil {
		t.Fatalf("medical: %v", err)
	}
	if medical.CertificateName != "fitness.pdf" || len(medical.Licenses) != 1 || medical.Licenses[0].LicenseNumber != "N-1" {
		t.Fatalf("unexpected medical %+v", medical)
	}

	if _, err := client.GetMedical(ctx, "EMP404"); !errors.Is(err, records.ErrNotFound) {
		t.Fatalf("expected records.ErrNotFound, got %v", err)
	}
}

func TestRecordClientEntityRejectsUnknownKind(t *testing.T) {
	client := NewRecordClient("http://127.0.0.1:1", time.Second, nil)
	if _, err := client.Entity(context.Background(), "payslips", "EMP001"); err == nil {
		t.Fatalf("expected unknown kind error")
	}
}

func TestRecordClientSaveMedical(t *testing.T) {
	var body string
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/entity/medical/EMP001" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("missing content type")
		}
		raw, _ := io.ReadAll(r.Body)
		body = string(raw)
		w.WriteHeader(http.StatusNoContent)
	})
	err := NewRecordClient(srv.URL, time.Second, nil).SaveMedical(context.Background(), "EMP001", records.Medical{BloodGroup: "O+"})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.Contains(body, `"licenses":[]`) || !strings.Contains(body, `"blood_group":"O+"`) {
		t.Fatalf("unexpected body %s", body)
	}
}

func TestRecordClientLicenseAlerts(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"data": {"alerts": [{"employee_id": 9, "license_type": "BLS", "license_number": "B-9", "expiry_date": "2024-06-10", "days_until_expiry": 9, "alert_level": "critical"}]}}`)
	})
	alerts, err := NewRecordClient(srv.URL, time.Second, nil).LicenseAlerts(context.Background())
	if err != nil {
		t.Fatalf("alerts: %v", err)
	}
	if len(alerts) != 1 || alerts[0].EmployeeRef.String() != "9" || alerts[0].AlertLevel != "critical" || alerts[0].DaysUntilExpiry != 9 {
		t.Fatalf("unexpected alerts %+v", alerts)
	}
}

func TestOnboardingDocumentsNotFoundIsEmpty(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	docs, err := NewOnboardingClient(srv.URL, time.Second, nil).ListDocuments(context.Background(), "7")
	if err != nil || len(docs) != 0 {
		t.Fatalf("expected empty documents, got %+v %v", docs, err)
	}
}

func TestCallerTokensForwardsOrMints(t *testing.T) {
	tokens := CallerTokens{Secret: "secret", TTL: time.Minute}

	forwarded, err := tokens.Token(requestctx.WithBearerToken(context.Background(), "caller-token"))
	if err != nil || forwarded != "caller-token" {
		t.Fatalf("expected forwarded token, got %q %v", forwarded, err)
	}

	minted, err := tokens.Token(requestctx.WithTenantID(context.Background(), "hospital"))
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	claims, err := auth.ParseToken("secret", minted)
	if err != nil {
		t.Fatalf("parse minted: %v", err)
	}
	if claims.RoleName != auth.RoleService || claims.TenantID != "hospital" {
		t.Fatalf("unexpected claims %+v", claims)
	}

	empty, err := CallerTokens{}.Token(context.Background())
	if err != nil || empty != "" {
		t.Fatalf("expected no token without secret, got %q %v", empty, err)
	}
}

func TestClientTransportFailureIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	baseURL := srv.URL
	srv.Close()

	client := NewClient("record_store", baseURL, time.Second, nil)
	err := client.get(context.Background(), "/entity/education/APP-1", nil)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestMalformedRowsDoNotHideSiblings(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/onboarding/list":
			_, _ = io.WriteString(w, `[
				{"application_id": 42, "candidate_name": "Asha", "joining_date": "2024-01-15", "status": "Active"},
				{"application_id": 43, "candidate_name": "Bala", "joining_date": "15/01/2024"},
				{"application_id": 44, "candidate_name": {"first": "Chitra"}}
			]`)
		case "/users/default/list":
			_, _ = io.WriteString(w, `{"data": [
				{"id": 5, "name": "Dev", "employee_code": "EMP005"},
				{"id": 6, "name": "Esha", "employee_code": 1006},
				"not-a-user"
			]}`)
		case "/entity/experience/EMP001":
			_, _ = io.WriteString(w, `[
				{"id": 1, "company_name": "City Clinic", "from_date": "2019-02-01", "experience_letter": "blob/exp/1.pdf"},
				{"id": 2, "company_name": "Old Ward", "from_date": "Feb 2015", "experience_letter": "blob/exp/2.pdf"},
				{"id": 3, "company_name": ["bad"]}
			]`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})
	ctx := context.Background()
	onboarding := NewOnboardingClient(srv.URL, time.Second, nil)
	users := NewUserClient(srv.URL, time.Second, nil)

	apps, err := onboarding.ListApplications(ctx)
	if err != nil || len(apps) != 2 {
		t.Fatalf("expected two decodable applications, got %+v %v", apps, err)
	}
	if apps[1].JoiningDate.Valid {
		t.Fatalf("expected unparseable joining date to be null, got %+v", apps[1].JoiningDate)
	}

	list, err := users.ListUsers(ctx, "default")
	if err != nil || len(list) != 2 || list[1].EmployeeCode != "1006" {
		t.Fatalf("unexpected users %+v %v", list, err)
	}

	resolver := identity.NewService(onboarding, users, "default")
	for _, ref := range []string{"42", "43", "user_5", "user_6"} {
		if _, err := resolver.ResolveRaw(ctx, ref); err != nil {
			t.Fatalf("resolve %s: %v", ref, err)
		}
	}

	experience, err := NewRecordClient(srv.URL, time.Second, nil).ListExperience(ctx, "EMP001")
	if err != nil || len(experience) != 2 || experience[1].FromDate.Valid {
		t.Fatalf("unexpected experience %+v %v", experience, err)
	}
}
