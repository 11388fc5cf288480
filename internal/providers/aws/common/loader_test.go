package common

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// ── fakes ────────────────────────────────────────────────────────────────────

type fakeSTS struct {
	out *sts.GetCallerIdentityOutput
	err error
}

func (f *fakeSTS) GetCallerIdentity(_ context.Context, _ *sts.GetCallerIdentityInput, _ ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	return f.out, f.err
}

// isolateSharedConfig points the SDK at temp config files so tests never read
// the developer's real ~/.aws directory.
func isolateSharedConfig(t *testing.T, config string) {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config")
	if err := os.WriteFile(cfgPath, []byte(config), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("AWS_CONFIG_FILE", cfgPath)
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(dir, "credentials"))
	t.Setenv("AWS_PROFILE", "")
	t.Setenv("AWS_DEFAULT_PROFILE", "")
	t.Setenv("AWS_REGION", "")
	t.Setenv("AWS_DEFAULT_REGION", "")
}

// ── ResolveCallerIdentity ────────────────────────────────────────────────────

func TestResolveCallerIdentity_Success(t *testing.T) {
	client := &fakeSTS{out: &sts.GetCallerIdentityOutput{
		Account: aws.String("111122223333"),
		Arn:     aws.String("arn:aws:iam::111122223333:user/auditor"),
		UserId:  aws.String("AIDAEXAMPLE"),
	}}

	id, err := ResolveCallerIdentity(context.Background(), client)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.AccountID != "111122223333" {
		t.Errorf("AccountID = %q, want 111122223333", id.AccountID)
	}
	if id.ARN != "arn:aws:iam::111122223333:user/auditor" {
		t.Errorf("ARN = %q", id.ARN)
	}
	if id.UserID != "AIDAEXAMPLE" {
		t.Errorf("UserID = %q", id.UserID)
	}
}

func TestResolveCallerIdentity_CallError(t *testing.T) {
	cause := errors.New("ExpiredToken")
	_, err := ResolveCallerIdentity(context.Background(), &fakeSTS{err: cause})
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped STS error, got %v", err)
	}
}

func TestResolveCallerIdentity_NilAccount(t *testing.T) {
	_, err := ResolveCallerIdentity(context.Background(), &fakeSTS{out: &sts.GetCallerIdentityOutput{}})
	if err == nil {
		t.Fatal("expected error when STS returns no account")
	}
}

// ── LoadProfile ──────────────────────────────────────────────────────────────

func TestLoadProfile_NamedProfileRegionAndFactoryOptions(t *testing.T) {
	isolateSharedConfig(t, "[profile staging]\nregion = eu-west-1\n")

	var gotOpts LoadOptions
	p := NewDefaultAWSClientProviderWithFactory(func(cfg aws.Config, opts LoadOptions) *ClientSet {
		gotOpts = opts
		return &ClientSet{STS: &fakeSTS{}}
	})

	opts := LoadOptions{Profile: "staging", Endpoint: "http://localhost:9000", UsePathStyle: true}
	pc, err := p.LoadProfile(context.Background(), opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pc.ProfileName != "staging" {
		t.Errorf("ProfileName = %q, want staging", pc.ProfileName)
	}
	if pc.Region != "eu-west-1" {
		t.Errorf("Region = %q, want eu-west-1", pc.Region)
	}
	if gotOpts != opts {
		t.Errorf("factory received %+v, want %+v", gotOpts, opts)
	}
}

func TestLoadProfile_DefaultsRegionWhenUnset(t *testing.T) {
	isolateSharedConfig(t, "")

	p := NewDefaultAWSClientProviderWithFactory(func(cfg aws.Config, _ LoadOptions) *ClientSet {
		return &ClientSet{}
	})

	pc, err := p.LoadProfile(context.Background(), LoadOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pc.ProfileName != "default" {
		t.Errorf("ProfileName = %q, want default", pc.ProfileName)
	}
	if pc.Region != defaultRegion {
		t.Errorf("Region = %q, want %s", pc.Region, defaultRegion)
	}
}

func TestLoadProfile_ExplicitRegionWins(t *testing.T) {
	isolateSharedConfig(t, "[profile staging]\nregion = eu-west-1\n")

	p := NewDefaultAWSClientProviderWithFactory(func(aws.Config, LoadOptions) *ClientSet { return &ClientSet{} })

	pc, err := p.LoadProfile(context.Background(), LoadOptions{Profile: "staging", Region: "ap-south-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pc.Region != "ap-south-1" {
		t.Errorf("Region = %q, want ap-south-1", pc.Region)
	}
}

func TestLoadProfile_UnknownProfile(t *testing.T) {
	isolateSharedConfig(t, "[profile staging]\nregion = eu-west-1\n")

	p := NewDefaultAWSClientProviderWithFactory(func(aws.Config, LoadOptions) *ClientSet { return &ClientSet{} })

	if _, err := p.LoadProfile(context.Background(), LoadOptions{Profile: "missing"}); err == nil {
		t.Fatal("expected error for a profile that does not exist")
	}
}

func TestProfileDisplayName(t *testing.T) {
	if got := profileDisplayName(""); got != "default" {
		t.Errorf("profileDisplayName(\"\") = %q, want default", got)
	}
	if got := profileDisplayName("prod"); got != "prod" {
		t.Errorf("profileDisplayName(prod) = %q, want prod", got)
	}
}
