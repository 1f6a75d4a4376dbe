// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package modpath

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petar-djukic/go-pagerequest/pkg/types"
)

func TestResolveAlias(t *testing.T) {
	r := New(Config{SrcRoot: "/app/src", Fs: afero.NewMemMapFs()})

	tests := []struct {
		spec string
		want string
	}{
		{"@/services/user", "/app/src/services/user"},
		{`@\services\user`, "/app/src/services/user"},
		{"/components/Card", "/app/src/components/Card"},
		{"./Card", "./Card"},
		{"react", "react"},
		{"@umijs/max", "@umijs/max"},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			assert.Equal(t, tt.want, r.ResolveAlias(tt.spec))
		})
	}
}

func TestResolveAlias_CustomToken(t *testing.T) {
	r := New(Config{SrcRoot: "/app/src", Alias: "~", Fs: afero.NewMemMapFs()})
	assert.Equal(t, "/app/src/utils/date", r.ResolveAlias("~/utils/date"))
	assert.Equal(t, "@/utils/date", r.ResolveAlias("@/utils/date"))
}

func TestJoinRelative(t *testing.T) {
	r := New(Config{SrcRoot: "/app/src", Fs: afero.NewMemMapFs()})

	assert.Equal(t, "/app/src/pages/Card", r.JoinRelative("/app/src/pages/Profile.tsx", "./Card"))
	assert.Equal(t, "/app/src/components/Card", r.JoinRelative("/app/src/pages/Profile.tsx", "../components/Card"))
	assert.Equal(t, "/app/src/services/user", r.JoinRelative("/app/src/pages/Profile.tsx", "@/services/user"))
	assert.Equal(t, "lodash", r.JoinRelative("/app/src/pages/Profile.tsx", "lodash"))
}

func TestIsLocal(t *testing.T) {
	r := New(Config{SrcRoot: "/app/src", Fs: afero.NewMemMapFs()})

	for _, spec := range []string{"./a", "../a", "@/a", "/a", `\a`, `@\a`} {
		assert.True(t, r.IsLocal(spec), spec)
	}
	for _, spec := range []string{"react", "@umijs/max", "@ant-design/icons", "lodash/get", "@"} {
		assert.False(t, r.IsLocal(spec), spec)
	}
}

func TestNormalize_ExistingFileWithExtension(t *testing.T) {
	fs := memTree(t, "/app/src/components/Card.tsx", "/app/src/styles/card.less")
	r := New(Config{SrcRoot: "/app/src", Fs: fs})

	assert.Equal(t, []string{"/app/src/components/Card.tsx"}, r.Normalize("/app/src/components/Card.tsx"))
	assert.Empty(t, r.Normalize("/app/src/styles/card.less"), "unrecognized extension")
	assert.Empty(t, r.Normalize("/app/src/components/Missing.tsx"), "dead import with extension")
}

func TestNormalize_ExtensionInferredSingleMatch(t *testing.T) {
	fs := memTree(t, "/app/src/components/Card.tsx")
	r := New(Config{SrcRoot: "/app/src", Fs: fs})

	assert.Equal(t, []string{"/app/src/components/Card.tsx"}, r.Normalize("/app/src/components/Card"))
	assert.Equal(t, 0, r.Stats().Ambiguous)
	assert.Empty(t, r.Diagnostics())
}

func TestNormalize_ExtensionCollisionReturnsAllAndReports(t *testing.T) {
	fs := memTree(t, "/app/src/utils/format.js", "/app/src/utils/format.ts")
	r := New(Config{SrcRoot: "/app/src", Fs: fs})

	got := r.Normalize("/app/src/utils/format")
	assert.Equal(t, []string{"/app/src/utils/format.js", "/app/src/utils/format.ts"}, got)

	assert.Equal(t, 1, r.Stats().Ambiguous)
	require.Len(t, r.Diagnostics(), 1)
	d := r.Diagnostics()[0]
	assert.Equal(t, types.DiagAmbiguous, d.Kind)
	assert.Equal(t, got, d.Candidates)

	// Memoized: asking again does not report again.
	r.Normalize("/app/src/utils/format")
	assert.Equal(t, 1, r.Stats().Ambiguous)
}

func TestNormalize_DirectoryIndex(t *testing.T) {
	fs := memTree(t,
		"/app/src/components/Card/index.tsx",
		"/app/src/components/Card/Card.tsx",
		"/app/src/components/Card/index.less",
	)
	r := New(Config{SrcRoot: "/app/src", Fs: fs})

	assert.Equal(t, []string{"/app/src/components/Card/index.tsx"}, r.Normalize("/app/src/components/Card"))
}

func TestNormalize_DirectoryWithoutIndex(t *testing.T) {
	fs := memTree(t, "/app/src/components/Card/Card.tsx")
	r := New(Config{SrcRoot: "/app/src", Fs: fs})

	assert.Empty(t, r.Normalize("/app/src/components/Card"))
}

func TestResolve_MissingRelativeImport(t *testing.T) {
	fs := memTree(t, "/app/src/pages/Profile.tsx")
	r := New(Config{SrcRoot: "/app/src", Fs: fs})

	assert.Empty(t, r.Resolve("/app/src/pages/Profile.tsx", "./missing"))
	assert.Equal(t, 1, r.Stats().Unresolved)
	require.Len(t, r.Diagnostics(), 1)
	assert.Equal(t, types.DiagUnresolved, r.Diagnostics()[0].Kind)
	assert.Equal(t, "./missing", r.Diagnostics()[0].Source)
}

func TestResolve_MemoizedPerDirectory(t *testing.T) {
	fs := memTree(t, "/app/src/pages/Card.tsx")
	r := New(Config{SrcRoot: "/app/src", Fs: fs})

	first := r.Resolve("/app/src/pages/A.tsx", "./Card")
	second := r.Resolve("/app/src/pages/B.tsx", "./Card")
	assert.Equal(t, first, second)
	assert.Equal(t, 2, r.Stats().Lookups)
	assert.Equal(t, 1, r.Stats().CacheHits)
}

func TestReset_DropsStaleAnswers(t *testing.T) {
	fs := memTree(t, "/app/src/pages/Profile.tsx")
	r := New(Config{SrcRoot: "/app/src", Fs: fs})

	assert.Empty(t, r.Resolve("/app/src/pages/Profile.tsx", "./Card"))

	require.NoError(t, afero.WriteFile(fs, "/app/src/pages/Card.tsx", []byte(""), 0o644))
	assert.Empty(t, r.Resolve("/app/src/pages/Profile.tsx", "./Card"), "cached within a pass")

	r.Reset()
	assert.Equal(t, []string{"/app/src/pages/Card.tsx"}, r.Resolve("/app/src/pages/Profile.tsx", "./Card"))
	assert.Empty(t, r.Diagnostics())
}

func TestExtOf(t *testing.T) {
	assert.Equal(t, ".tsx", extOf("/a/b/Card.tsx"))
	assert.Equal(t, "", extOf("/a/b.c/Card"))
	assert.Equal(t, "", extOf("/a/.eslintrc"))
}

func memTree(t *testing.T, files ...string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for _, f := range files {
		require.NoError(t, afero.WriteFile(fs, f, []byte("export default {}\n"), 0o644))
	}
	return fs
}
