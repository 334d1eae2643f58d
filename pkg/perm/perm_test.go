package perm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mahmudadem/erpcore/pkg/perm"
)

func TestMatches(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		grant    string
		required string
		want     bool
	}{
		{"exact match", "accounting.vouchers", "accounting.vouchers", true},
		{"global wildcard", "*", "anything.at.all", true},
		{"hierarchical grant covers child", "accounting.vouchers", "accounting.vouchers.approve", true},
		{"hierarchical grant covers grandchild", "accounting", "accounting.vouchers.approve", true},
		{"sibling namespace not covered", "accounting.vouchers", "accounting.voucherstypes.list", false},
		{"prefix without segment boundary", "accounting.vouchers", "accounting.vouchersx", false},
		{"finer grant does not cover coarser", "accounting.vouchers.approve", "accounting.vouchers", false},
		{"case sensitive", "Accounting.vouchers", "accounting.vouchers", false},
		{"empty grant", "", "accounting", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, perm.Matches(tt.grant, tt.required))
		})
	}
}

func TestHas(t *testing.T) {
	t.Parallel()

	grants := []string{"inventory", "accounting.vouchers"}

	assert.True(t, perm.Has(grants, "inventory.items.create"))
	assert.True(t, perm.Has(grants, "accounting.vouchers.approve"))
	assert.False(t, perm.Has(grants, "accounting.reports.view"))
	assert.False(t, perm.Has(nil, "inventory"))
	assert.True(t, perm.Has([]string{"*"}, "hr.payroll.run"))
}

func TestHasAllAndAny(t *testing.T) {
	t.Parallel()

	grants := []string{"accounting.vouchers", "inventory.items"}

	assert.True(t, perm.HasAll(grants, []string{"accounting.vouchers.create", "inventory.items.list"}))
	assert.False(t, perm.HasAll(grants, []string{"accounting.vouchers.create", "hr.employees.list"}))
	assert.True(t, perm.HasAny(grants, []string{"hr.employees.list", "inventory.items.list"}))
	assert.False(t, perm.HasAny(grants, []string{"hr.employees.list", "sales.orders"}))

	// Empty requirements are trivially satisfied.
	assert.True(t, perm.HasAll(grants, nil))
	assert.True(t, perm.HasAny(nil, nil))

	// Wildcard short-circuits.
	assert.True(t, perm.HasAll([]string{"*"}, []string{"a", "b.c", "d.e.f"}))
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	assert.Nil(t, perm.Normalize(nil))
	assert.Nil(t, perm.Normalize([]string{" ", ""}))
	assert.Equal(t,
		[]string{"a.b", "c"},
		perm.Normalize([]string{"c", "a.b", "c", " a.b "}),
	)
}

func TestEqual(t *testing.T) {
	t.Parallel()

	assert.True(t, perm.Equal([]string{"b", "a"}, []string{"a", "b", "b"}))
	assert.False(t, perm.Equal([]string{"a"}, []string{"a", "b"}))
	assert.True(t, perm.Equal(nil, []string{}))
}
