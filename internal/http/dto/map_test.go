package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"

	issvc "github.com/pulsegate/signal-service/internal/service"
)

func TestFromTargetOmitsCredential(t *testing.T) {
	resp := FromTarget(issvc.TargetRecord{
		ID: "t1", SubjectKey: "acct-42", Owner: "acme", Repo: "widgets",
		RefName: "refs/pulse/acct-42", Credential: "secret", Status: "Active",
	})
	assert.Equal(t, "refs/pulse/acct-42", resp.RefName)
	// TargetResponse has no credential field at all; nothing to assert beyond shape
	assert.Equal(t, "t1", resp.ID)
}

func TestFromSignerKeys(t *testing.T) {
	keys := []issvc.SignerKey{
		{KID: "key-1", Alg: "EdDSA", PublicKey: []byte{0xab, 0xcd}},
		{KID: "key-2", Alg: "RS256", PublicKey: []byte{0x01}},
	}
	set := FromSignerKeys(keys)
	assert.Len(t, set.Keys, 1, "unsupported algs are skipped")
	assert.Equal(t, "key-1", set.Keys[0].KeyID)
	assert.Equal(t, "abcd", set.Keys[0].PublicKey)
}
