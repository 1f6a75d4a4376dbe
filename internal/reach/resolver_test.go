// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package reach

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petar-djukic/go-pagerequest/internal/importgraph"
	"github.com/petar-djukic/go-pagerequest/internal/modpath"
	"github.com/petar-djukic/go-pagerequest/pkg/types"
)

const src = "/app/src"

var (
	getUser    = types.APIRequest{Name: "getUser", Method: "GET", URL: "/api/user"}
	updateUser = types.APIRequest{Name: "updateUser", Method: "PUT", URL: "/api/user"}
	listOrders = types.APIRequest{Name: "listOrders", Method: "GET", URL: "/api/orders"}
	getOrder   = types.APIRequest{Name: "getOrder", Method: "GET", URL: "/api/order"}
	fetchUser  = types.APIRequest{Name: "fetchUser", Method: "GET", URL: "/api/user"}
)

var testServices = types.ServiceGroupMap{
	"user":  {"getUser": getUser, "updateUser": updateUser, "fetchUser": fetchUser},
	"order": {"listOrders": listOrders, "getOrder": getOrder},
}

// fixture wires a Resolver over an in-memory tree whose files are the keys
// of decls.
func fixture(t *testing.T, decls types.FileDeclarations) *Resolver {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path := range decls {
		require.NoError(t, afero.WriteFile(fs, path, []byte("export {}\n"), 0o644))
	}

	g := importgraph.New(importgraph.Config{SrcRoot: src})
	g.Build(decls)

	return New(Config{
		Graph:        g,
		Paths:        modpath.New(modpath.Config{SrcRoot: src, Fs: fs}),
		Services:     testServices,
		ServicesRoot: src + "/services",
	})
}

func imp(source string, locals ...string) types.Declaration {
	d := types.Declaration{Kind: types.ImportDeclaration, Source: source, ImportKind: types.KindValue}
	for _, l := range locals {
		d.Specifiers = append(d.Specifiers, types.Specifier{Kind: types.ImportSpecifier, Local: l})
	}
	return d
}

func TestResolve_DirectServiceImport(t *testing.T) {
	r := fixture(t, types.FileDeclarations{
		src + "/pages/Profile.tsx": {imp("@/services/user", "getUser")},
	})
	assert.Equal(t, []types.APIRequest{getUser}, r.Resolve(src+"/pages/Profile.tsx"))
}

func TestResolve_TransitiveOrderFollowsEdges(t *testing.T) {
	r := fixture(t, types.FileDeclarations{
		src + "/pages/Orders.tsx": {
			imp("@/services/order", "listOrders"),
			imp("@/components/Card"),
			imp("@/services/user", "getUser"),
		},
		src + "/components/Card.tsx": {
			imp("@/services/order", "getOrder"),
			imp("@/services/user", "updateUser"),
		},
	})

	got := r.Resolve(src + "/pages/Orders.tsx")
	assert.Equal(t, []types.APIRequest{listOrders, getOrder, updateUser, getUser}, got)
}

func TestResolve_DuplicateMethodURLKeepsFirst(t *testing.T) {
	r := fixture(t, types.FileDeclarations{
		src + "/pages/A.tsx": {
			imp("@/services/user", "fetchUser"),
			imp("./B"),
		},
		src + "/pages/B.tsx": {imp("@/services/user", "getUser")},
	})

	got := r.Resolve(src + "/pages/A.tsx")
	assert.Equal(t, []types.APIRequest{fetchUser}, got)
}

func TestResolve_MissingImportContributesNothing(t *testing.T) {
	r := fixture(t, types.FileDeclarations{
		src + "/pages/A.tsx": {
			imp("./missing", "x"),
			imp("@/services/user", "getUser"),
		},
	})
	assert.Equal(t, []types.APIRequest{getUser}, r.Resolve(src+"/pages/A.tsx"))
}

func TestResolve_ExternalPackageContributesNothing(t *testing.T) {
	// The graph builder would drop these already; feed the resolver directly.
	graph := edgeMap{src + "/pages/A.tsx": {
		{Source: "user-sdk", Bindings: []string{"getUser"}},
		{Source: "@company/services", Bindings: []string{"getUser"}},
	}}
	r := New(Config{
		Graph:        graph,
		Paths:        modpath.New(modpath.Config{SrcRoot: src, Fs: afero.NewMemMapFs()}),
		Services:     testServices,
		ServicesRoot: src + "/services",
	})
	assert.Empty(t, r.Resolve(src+"/pages/A.tsx"))
}

func TestResolve_UnknownBindingsAndGroupsIgnored(t *testing.T) {
	r := fixture(t, types.FileDeclarations{
		src + "/pages/A.tsx": {
			imp("@/services/user", "USER_ROLES", "getUser"),
			imp("@/services/billing", "getInvoice"),
			imp("@/services", "anything"),
		},
	})
	assert.Equal(t, []types.APIRequest{getUser}, r.Resolve(src+"/pages/A.tsx"))

	require.Len(t, r.Diagnostics(), 1)
	assert.Equal(t, types.DiagUnknownGroup, r.Diagnostics()[0].Kind)
}

func TestResolve_RelativeServiceImport(t *testing.T) {
	r := fixture(t, types.FileDeclarations{
		src + "/pages/A.tsx": {imp("../services/order/api", "getOrder")},
	})
	assert.Equal(t, []types.APIRequest{getOrder}, r.Resolve(src+"/pages/A.tsx"))
}

func TestResolve_CycleTerminates(t *testing.T) {
	r := fixture(t, types.FileDeclarations{
		src + "/pages/A.tsx":      {imp("@/components/B")},
		src + "/components/B.tsx": {imp("@/services/user", "getUser"), imp("./C")},
		src + "/components/C.tsx": {imp("./B"), imp("@/services/order", "listOrders")},
	})

	got := r.Resolve(src + "/pages/A.tsx")
	assert.Equal(t, []types.APIRequest{getUser, listOrders}, got)
	assert.Equal(t, 1, r.Stats().Cycles)

	var cycles int
	for _, d := range r.Diagnostics() {
		if d.Kind == types.DiagCycle {
			cycles++
		}
	}
	assert.Equal(t, 1, cycles)
}

func TestResolve_CycleResultIndependentOfEntryOrder(t *testing.T) {
	decls := types.FileDeclarations{
		src + "/pages/A1.tsx":     {imp("@/components/X")},
		src + "/pages/B2.tsx":     {imp("@/components/Y")},
		src + "/components/X.tsx": {imp("@/services/user", "getUser"), imp("./Y")},
		src + "/components/Y.tsx": {imp("./X"), imp("@/services/order", "listOrders")},
	}

	both := fixture(t, decls)
	a1 := both.Resolve(src + "/pages/A1.tsx")
	b2 := both.Resolve(src + "/pages/B2.tsx")

	alone := fixture(t, decls).Resolve(src + "/pages/B2.tsx")

	assert.Equal(t, alone, b2)
	assert.Equal(t, []types.APIRequest{getUser, listOrders}, b2)
	assert.Equal(t, []types.APIRequest{getUser, listOrders}, a1)
	assert.Equal(t, []types.APIRequest{getUser, listOrders}, both.Resolve(src+"/components/Y.tsx"))
}

func TestResolve_NestedCyclesShareComponentResult(t *testing.T) {
	r := fixture(t, types.FileDeclarations{
		src + "/pages/P.tsx":      {imp("@/components/A")},
		src + "/components/A.tsx": {imp("./B"), imp("@/services/user", "getUser")},
		src + "/components/B.tsx": {imp("./C"), imp("./A")},
		src + "/components/C.tsx": {imp("./B"), imp("@/services/order", "getOrder")},
	})

	assert.Equal(t, []types.APIRequest{getOrder, getUser}, r.Resolve(src+"/pages/P.tsx"))
	assert.ElementsMatch(t, []types.APIRequest{getOrder, getUser}, r.Resolve(src+"/components/B.tsx"))
	assert.ElementsMatch(t, []types.APIRequest{getOrder, getUser}, r.Resolve(src+"/components/C.tsx"))
}

func TestResolve_DottedGroupDirectory(t *testing.T) {
	fs := afero.NewMemMapFs()
	decls := types.FileDeclarations{
		src + "/pages/P.tsx": {imp("@/services/user.v2/api", "getUser")},
	}
	g := importgraph.New(importgraph.Config{SrcRoot: src})
	g.Build(decls)

	r := New(Config{
		Graph:        g,
		Paths:        modpath.New(modpath.Config{SrcRoot: src, Fs: fs}),
		Services:     types.ServiceGroupMap{"user.v2": {"getUser": getUser}},
		ServicesRoot: src + "/services",
	})

	assert.Equal(t, []types.APIRequest{getUser}, r.Resolve(src+"/pages/P.tsx"))
	assert.Empty(t, r.Diagnostics())
}

func TestResolve_SelfImportTerminates(t *testing.T) {
	r := fixture(t, types.FileDeclarations{
		src + "/pages/A.tsx": {imp("./A"), imp("@/services/user", "getUser")},
	})
	assert.Equal(t, []types.APIRequest{getUser}, r.Resolve(src+"/pages/A.tsx"))
}

func TestResolve_MemoizedResultIsStable(t *testing.T) {
	r := fixture(t, types.FileDeclarations{
		src + "/pages/A.tsx":         {imp("@/components/Card")},
		src + "/pages/B.tsx":         {imp("@/components/Card"), imp("@/services/user", "getUser")},
		src + "/components/Card.tsx": {imp("@/services/order", "listOrders", "getOrder")},
	})

	first := r.Resolve(src + "/pages/A.tsx")
	second := r.Resolve(src + "/pages/A.tsx")
	assert.Equal(t, first, second)

	b := r.Resolve(src + "/pages/B.tsx")
	assert.Equal(t, []types.APIRequest{listOrders, getOrder, getUser}, b)
	assert.Equal(t, []types.APIRequest{listOrders, getOrder}, r.Resolve(src+"/components/Card.tsx"))
	assert.GreaterOrEqual(t, r.Stats().MemoHits, 2)
}

func TestResolve_UntrackedFileContributesNothing(t *testing.T) {
	r := fixture(t, types.FileDeclarations{
		src + "/pages/A.tsx": {imp("@/components/Leaf")},
	})
	assert.Empty(t, r.Resolve(src+"/pages/A.tsx"))
}

func TestServiceGroup(t *testing.T) {
	r := New(Config{ServicesRoot: src + "/services"})

	tests := []struct {
		path  string
		group string
		ok    bool
	}{
		{src + "/services/user", "user", true},
		{src + "/services/user/index.ts", "user", true},
		{src + "/services/user.ts", "user", true},
		{src + "/services/user.v2", "user.v2", true},
		{src + "/services/user.v2/api", "user.v2", true},
		{src + "/services/user.v2/api.ts", "user.v2", true},
		{src + "/services", "", true},
		{src + "/servicesExtra/user", "", false},
		{src + "/components/user", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			group, ok := r.serviceGroup(tt.path)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.group, group)
		})
	}
}

// edgeMap is an EdgeSource backed by a literal map.
type edgeMap map[string][]types.ImportEdge

func (m edgeMap) Edges(path string) []types.ImportEdge {
	return m[path]
}
