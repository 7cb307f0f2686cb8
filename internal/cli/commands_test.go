package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/simplekeystore/internal/crypto"
)

func TestAddGetDeleteScenario(t *testing.T) {
	e := newCLIEnv(t)

	out := e.mustRun(t, "sekret123\n", "add", "--name", "svc")
	assert.Contains(t, out, "added key record 1 (svc)")

	out = e.mustRun(t, "", "get", "svc")
	assert.Equal(t, "sekret123\n", out)

	out = e.mustRun(t, "", "delete", "--name", "svc")
	assert.Contains(t, out, "1 records deleted")

	_, err := e.run(t, "", "get", "svc")
	assert.Equal(t, ExitCodeAmbiguous, ExitCodeOf(err))

	out = e.mustRun(t, "", "count")
	assert.Equal(t, "0\n", out)
}

func TestAddAllFieldsAndShow(t *testing.T) {
	e := newCLIEnv(t)

	e.mustRun(t, "", "add", "--name", "svc", "--key", "abcdefghijklmnopqrstuvwxyz",
		"--batch", "one", "--source", "aws", "--login", "alice", "--expires", "2099-01-31")

	out := e.mustRun(t, "", "show", "1")
	assert.Contains(t, out, "abcdefgh...stuvwxyz")
	assert.NotContains(t, out, "abcdefghijklmnopqrstuvwxyz")
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "2099-01-31")

	out = e.mustRun(t, "", "show", "1", "--reveal")
	assert.Contains(t, out, "abcdefghijklmnopqrstuvwxyz")

	_, err := e.run(t, "", "show", "99")
	assert.Equal(t, ExitCodeNotFound, ExitCodeOf(err))

	_, err = e.run(t, "", "show", "zero")
	assert.Equal(t, ExitCodeUsage, ExitCodeOf(err))
}

func TestAddValidation(t *testing.T) {
	e := newCLIEnv(t)

	_, err := e.run(t, "secret\n", "add")
	assert.Equal(t, ExitCodeUsage, ExitCodeOf(err))

	_, err = e.run(t, "", "add", "--name", "svc")
	assert.Equal(t, ExitCodeUsage, ExitCodeOf(err))

	_, err = e.run(t, "secret\n", "add", "--name", "svc", "--expires", "next tuesday")
	assert.Equal(t, ExitCodeUsage, ExitCodeOf(err))
}

func TestListFiltersAndJSON(t *testing.T) {
	e := newCLIEnv(t)
	e.mustRun(t, "k-one-aaaaaaaaaaaaaaaaaaa\n", "add", "--name", "svc", "--batch", "one")
	e.mustRun(t, "k-two-bbbbbbbbbbbbbbbbbbb\n", "add", "--name", "svc", "--batch", "two", "--active=false")
	e.mustRun(t, "k-other-cccccccccccccccccc\n", "add", "--name", "other")

	out := e.mustRun(t, "", "--json", "list", "--name", "svc", "--sort", "usable,batch")
	var views []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &views))
	require.Len(t, views, 2)
	assert.Equal(t, "two", views[0]["batch"])
	assert.Equal(t, false, views[0]["usable"])
	assert.NotContains(t, views[0], "key")

	out = e.mustRun(t, "", "--json", "list", "--active=false")
	require.NoError(t, json.Unmarshal([]byte(out), &views))
	require.Len(t, views, 1)
	assert.EqualValues(t, 2, views[0]["id"])

	out = e.mustRun(t, "", "list", "--batch", "nope")
	assert.Contains(t, out, NoRecordsMessage)

	_, err := e.run(t, "", "list", "--sort", "color")
	assert.Equal(t, ExitCodeUsage, ExitCodeOf(err))
}

func TestDeleteRequiresConfirmationForEverything(t *testing.T) {
	e := newCLIEnv(t)
	e.mustRun(t, "one\n", "add", "--name", "a")
	e.mustRun(t, "two\n", "add", "--name", "b")

	_, err := e.run(t, "", "delete")
	assert.Equal(t, ExitCodeUsage, ExitCodeOf(err))

	_, err = e.run(t, "", "delete", "--key", "one", "--name", "a")
	assert.Equal(t, ExitCodeUsage, ExitCodeOf(err))

	out := e.mustRun(t, "", "delete", "--key", "one")
	assert.Contains(t, out, "1 records deleted")

	out = e.mustRun(t, "", "delete", "--key", "one")
	assert.Contains(t, out, "no records deleted")

	out = e.mustRun(t, "", "delete", "--all")
	assert.Contains(t, out, "1 records deleted")
}

func TestUpdateAndDeactivate(t *testing.T) {
	e := newCLIEnv(t)
	e.mustRun(t, "sekret123\n", "add", "--name", "svc")

	out := e.mustRun(t, "", "--json", "update", "1", "--name", "renamed", "--batch", "b2")
	var view map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, "renamed", view["name"])
	assert.Equal(t, "b2", view["batch"])

	_, err := e.run(t, "", "update", "1")
	assert.Equal(t, ExitCodeUsage, ExitCodeOf(err))

	_, err = e.run(t, "", "update", "42", "--batch", "x")
	assert.Equal(t, ExitCodeNotFound, ExitCodeOf(err))

	out = e.mustRun(t, "sekret123\n", "deactivate")
	assert.Contains(t, out, "deactivated key record 1 (renamed)")

	out = e.mustRun(t, "", "--json", "show", "1")
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, false, view["active"])
	assert.Equal(t, false, view["usable"])

	_, err = e.run(t, "", "deactivate", "--key", "missing")
	assert.Equal(t, ExitCodeNotFound, ExitCodeOf(err))
}

func TestUpdateClearsExpiration(t *testing.T) {
	e := newCLIEnv(t)
	e.mustRun(t, "sekret123\n", "add", "--name", "svc", "--expires", "2099-01-31")

	out := e.mustRun(t, "", "--json", "update", "1", "--expires", "")
	var view map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Nil(t, view["expiration_in_sse"])
	assert.Nil(t, view["expiration_date"])
	assert.Equal(t, true, view["usable"])
}

func TestFindKey(t *testing.T) {
	e := newCLIEnv(t)
	e.mustRun(t, "sekret123\n", "add", "--name", "svc", "--login", "alice")

	out := e.mustRun(t, "sekret123\n", "find-key")
	assert.Contains(t, out, "alice")

	_, err := e.run(t, "", "find-key", "--key", "nope")
	assert.Equal(t, ExitCodeNotFound, ExitCodeOf(err))
}

func TestReportsAndNext(t *testing.T) {
	e := newCLIEnv(t)
	e.mustRun(t, "later-key\n", "add", "--name", "svc", "--source", "aws", "--expires", "30")
	e.mustRun(t, "sooner-key\n", "add", "--name", "svc", "--source", "aws", "--expires", "3")
	e.mustRun(t, "dead-key\n", "add", "--name", "svc", "--source", "aws", "--active=false")

	out := e.mustRun(t, "", "report", "counts", "--name", "svc")
	assert.Contains(t, out, "Usability counts (3 records total, 2 usable, 1 not)")

	out = e.mustRun(t, "", "--json", "report", "counts")
	var counts countsView
	require.NoError(t, json.Unmarshal([]byte(out), &counts))
	require.Len(t, counts.Groups, 1)
	assert.Equal(t, "None", counts.Groups[0].Login)
	assert.Equal(t, 2, counts.Groups[0].Usable)

	out = e.mustRun(t, "", "report", "usability")
	assert.Contains(t, out, "svc")

	out = e.mustRun(t, "", "next", "--name", "svc")
	assert.Equal(t, "sooner-key\n", out)

	_, err := e.run(t, "", "next", "--name", "nobody")
	assert.Equal(t, ExitCodeNotFound, ExitCodeOf(err))
}

func TestVerify(t *testing.T) {
	e := newCLIEnv(t)
	e.mustRun(t, "a\n", "add", "--name", "a")
	e.mustRun(t, "b\n", "add", "--name", "b")

	out := e.mustRun(t, "", "verify")
	assert.Contains(t, out, "2 records verified")
}

func TestWrongMasterKeyIsConfigError(t *testing.T) {
	e := newCLIEnv(t)
	e.mustRun(t, "sekret123\n", "add", "--name", "svc")

	other, err := crypto.GenerateMasterKey()
	require.NoError(t, err)
	e.env["SIMPLE_KEYSTORE_KEY"] = other

	_, err = e.run(t, "", "get", "svc")
	assert.Equal(t, ExitCodeConfig, ExitCodeOf(err))
}

func TestMissingMasterKeyIsConfigError(t *testing.T) {
	e := newCLIEnv(t)
	e.env["SIMPLE_KEYSTORE_KEY"] = ""

	_, err := e.run(t, "", "count")
	require.Error(t, err)
	assert.Equal(t, ExitCodeConfig, ExitCodeOf(err))
	assert.True(t, strings.Contains(err.Error(), "SIMPLE_KEYSTORE_KEY"))
}
