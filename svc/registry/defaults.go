package registry

var disabled = false

// Default returns the built-in catalog: the module set, per-module
// permission definitions, the curated bundles and the module dependency
// table. Deployments can replace it entirely via LoadFile.
func Default() *Registry {
	return MustNew(Config{
		Modules: []Module{
			{
				Code: AdminModule,
				Name: "Company Administration",
				Permissions: []PermissionDef{
					{ID: "companyAdmin.profile.view", Description: "View company profile"},
					{ID: "companyAdmin.profile.update", Description: "Update company profile"},
					{ID: "companyAdmin.roles.manage", Description: "Create, update and delete roles"},
					{ID: "companyAdmin.members.manage", Description: "Invite, assign and disable members"},
					{ID: "companyAdmin.modules.manage", Description: "Activate feature modules"},
				},
			},
			{
				Code: "accounting",
				Name: "Accounting",
				Permissions: []PermissionDef{
					{ID: "accounting.accounts.view", Description: "View chart of accounts"},
					{ID: "accounting.accounts.manage", Description: "Manage chart of accounts"},
					{ID: "accounting.vouchers.create", Description: "Create vouchers"},
					{ID: "accounting.vouchers.approve", Description: "Approve vouchers"},
					{ID: "accounting.reports.view", Description: "View accounting reports"},
				},
			},
			{
				Code: "inventory",
				Name: "Inventory",
				Permissions: []PermissionDef{
					{ID: "inventory.items.view", Description: "View inventory items"},
					{ID: "inventory.items.manage", Description: "Manage inventory items"},
					{ID: "inventory.warehouses.manage", Description: "Manage warehouses"},
				},
			},
			{
				Code: "hr",
				Name: "Human Resources",
				Permissions: []PermissionDef{
					{ID: "hr.employees.view", Description: "View employees"},
					{ID: "hr.employees.manage", Description: "Manage employees"},
					{ID: "hr.payroll.run", Description: "Run payroll"},
					// Kept in the catalog for forward compatibility; not yet granted anywhere.
					{ID: "hr.payroll.export", Description: "Export payroll data", Enabled: &disabled},
				},
			},
			{
				Code: "procurement",
				Name: "Procurement",
				Permissions: []PermissionDef{
					{ID: "procurement.orders.create", Description: "Create purchase orders"},
					{ID: "procurement.orders.approve", Description: "Approve purchase orders"},
					{ID: "procurement.suppliers.manage", Description: "Manage suppliers"},
				},
			},
			{
				Code: "sales",
				Name: "Sales",
				Permissions: []PermissionDef{
					{ID: "sales.orders.create", Description: "Create sales orders"},
					{ID: "sales.orders.approve", Description: "Approve sales orders"},
					{ID: "sales.customers.manage", Description: "Manage customers"},
				},
			},
		},
		Bundles: []Bundle{
			{ID: "starter", Name: "Starter", Modules: []string{"accounting", "inventory"}},
			{ID: "business", Name: "Business", Modules: []string{"accounting", "inventory", "hr"}},
			{ID: "enterprise", Name: "Enterprise", Modules: []string{"accounting", "inventory", "hr", "procurement", "sales"}},
		},
		Dependencies: map[string][]string{
			"hr":          {"accounting"},
			"procurement": {"accounting", "inventory"},
			"sales":       {"inventory"},
		},
	})
}
