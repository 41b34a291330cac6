package auth

import (
	"testing"
	"time"
)

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken("secret", Claims{UserID: "u1", TenantID: "hospital", RoleName: RoleHR}, time.Hour, time.Now())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := ParseToken("secret", token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != "u1" || claims.TenantID != "hospital" || claims.RoleName != RoleHR || claims.Subject != "u1" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestParseTokenRejectsWrongSecretAndExpired(t *testing.T) {
	token, _ := GenerateToken("secret", Claims{UserID: "u1"}, time.Hour, time.Now())
	if _, err := ParseToken("other", token); err == nil {
		t.Fatalf("expected signature error")
	}
	expired, _ := GenerateToken("secret", Claims{UserID: "u1"}, time.Minute, time.Now().Add(-time.Hour))
	if _, err := ParseToken("secret", expired); err == nil {
		t.Fatalf("expected expiry error")
	}
}

func TestAllowed(t *testing.T) {
	if !Allowed(RoleHR, PermProbationWrite) {
		t.Fatalf("HR should write probation")
	}
	if Allowed(RoleEmployee, PermProbationWrite) {
		t.Fatalf("employee must not write probation")
	}
	if Allowed("Visitor", PermEmployeesRead) {
		t.Fatalf("unknown role must be denied")
	}
	if !(UserContext{RoleName: RoleSystemAdmin}).Can(PermJobsRun) {
		t.Fatalf("system admin should run jobs")
	}
	if Allowed(RoleManager, PermSensitiveRead) || !Allowed(RoleHR, PermSensitiveRead) {
		t.Fatalf("only HR may read sensitive records")
	}
}
