package gcp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("DOCVERIFY_TEST_SET", "memory")
	t.Setenv("DOCVERIFY_TEST_EMPTY", "")

	require.Equal(t, "memory", GetEnv("DOCVERIFY_TEST_SET", "firestore"))
	require.Equal(t, "", GetEnv("DOCVERIFY_TEST_EMPTY", "firestore"))
	require.Equal(t, "firestore", GetEnv("DOCVERIFY_TEST_UNSET", "firestore"))
}

func TestGetEnvList(t *testing.T) {
	t.Setenv("DOCVERIFY_TEST_LANGS", " eng, hin ,,")
	t.Setenv("DOCVERIFY_TEST_COMMAS", " , ")

	require.Equal(t, []string{"eng", "hin"}, GetEnvList("DOCVERIFY_TEST_LANGS", "eng"))
	require.Equal(t, []string{"*"}, GetEnvList("DOCVERIFY_TEST_COMMAS", "*"))
	require.Equal(t, []string{"eng"}, GetEnvList("DOCVERIFY_TEST_UNSET", "eng"))
	require.Nil(t, GetEnvList("DOCVERIFY_TEST_UNSET"))
}
