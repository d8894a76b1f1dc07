package resources

import (
	"retailadmin/models"
	"retailadmin/utils"
)

var statusOptions = []string{models.StatusActive, models.StatusInactive}

var unitOptions = []string{"pcs", "kg", "g", "l", "ml", "m", "cm", "box", "pack", "set"}

func statusField() Field {
	return Field{Name: "status", Label: "Status", Kind: Enum, Required: true, Default: models.StatusActive, Options: statusOptions}
}

// Users are console accounts. The API stores fullName; the form edits first and last names.
var Users = &Schema{
	Name:       "users",
	Title:      "Users",
	Singular:   "user",
	Endpoint:   "/users",
	ListPath:   "/users",
	LabelField: "fullName",
	Fields: []Field{
		{Name: "firstName", Label: "First Name", Kind: Text, Required: true},
		{Name: "lastName", Label: "Last Name", Kind: Text, Required: true},
		{Name: "email", Label: "Email", Kind: Email, Required: true},
		{Name: "password", Label: "Password", Kind: Password, Required: true, CreateOnly: true, MinLen: 6},
		{Name: "phoneNumber", Label: "Phone Number", Kind: Text, Required: true},
		{Name: "address", Label: "Address", Kind: Text},
		{Name: "userRole", Label: "User Role", Kind: Enum, Required: true, Default: "staff", Options: utils.UserRoles()},
		statusField(),
		{Name: "profileImage", Label: "Profile Image", Kind: Image},
	},
	Columns: []Column{
		{Field: "id", Title: "ID"},
		{Field: "fullName", Title: "Full Name"},
		{Field: "email", Title: "Email"},
		{Field: "phoneNumber", Title: "Phone"},
		{Field: "userRole", Title: "Role"},
		{Field: "status", Title: "Status"},
	},
	BeforeSubmit: func(values models.Record) models.Record {
		out := values.Clone()
		out["fullName"] = utils.JoinFullName(values.Text("firstName"), values.Text("lastName"))
		return out
	},
	AfterFetch: func(rec models.Record) models.Record {
		out := rec.Clone()
		if out.Text("firstName") == "" && out.Text("lastName") == "" {
			first, last := utils.SplitFullName(rec.Text("fullName"))
			out["firstName"] = first
			out["lastName"] = last
		}
		delete(out, "password")
		return out
	},
}

var Customers = &Schema{
	Name:       "customers",
	Title:      "Customers",
	Singular:   "customer",
	Endpoint:   "/customers",
	ListPath:   "/customers",
	LabelField: "fullName",
	Fields: []Field{
		{Name: "fullName", Label: "Full Name", Kind: Text, Required: true},
		{Name: "customerCode", Label: "Customer Code", Kind: Text, Required: true},
		{Name: "phoneNumber", Label: "Phone Number", Kind: Text, Required: true},
		{Name: "address", Label: "Address", Kind: Text},
		{Name: "creditLimit", Label: "Credit Limit", Kind: Number, Required: true, Default: 0, Min: atLeast(0)},
		{Name: "balance", Label: "Current Balance", Kind: Number, Required: true, Default: 0},
		statusField(),
	},
	Columns: []Column{
		{Field: "id", Title: "ID"},
		{Field: "customerCode", Title: "Customer Code"},
		{Field: "fullName", Title: "Full Name"},
		{Field: "phoneNumber", Title: "Phone Number"},
		{Field: "creditLimit", Title: "Credit Limit", Money: true},
		{Field: "balance", Title: "Balance", Money: true},
		{Field: "status", Title: "Status"},
	},
}

var Stores = &Schema{
	Name:       "stores",
	Title:      "Stores",
	Singular:   "store",
	Endpoint:   "/stores",
	ListPath:   "/stores",
	LabelField: "storeName",
	Fields: []Field{
		{Name: "storeName", Label: "Store Name", Kind: Text, Required: true},
		{Name: "storeCode", Label: "Store Code", Kind: Text, Required: true},
		{Name: "location", Label: "Location", Kind: Text, Required: true},
		{Name: "contactNumber", Label: "Contact Number", Kind: Text, Required: true},
		{Name: "description", Label: "Description", Kind: Text},
		statusField(),
	},
	Columns: []Column{
		{Field: "id", Title: "ID"},
		{Field: "storeCode", Title: "Store Code"},
		{Field: "storeName", Title: "Store Name"},
		{Field: "location", Title: "Location"},
		{Field: "contactNumber", Title: "Contact Number"},
		{Field: "status", Title: "Status"},
	},
}

var Suppliers = &Schema{
	Name:       "suppliers",
	Title:      "Suppliers",
	Singular:   "supplier",
	Endpoint:   "/suppliers",
	ListPath:   "/suppliers",
	LabelField: "supplierName",
	Fields: []Field{
		{Name: "supplierName", Label: "Supplier Name", Kind: Text, Required: true},
		{Name: "supplierCode", Label: "Supplier Code", Kind: Text, Required: true},
		{Name: "contactPerson", Label: "Contact Person", Kind: Text, Required: true},
		{Name: "phoneNumber", Label: "Phone Number", Kind: Text, Required: true},
		{Name: "address", Label: "Address", Kind: Text},
		{Name: "location", Label: "Location", Kind: Text, Required: true},
		{Name: "taxId", Label: "Tax ID", Kind: Text},
		statusField(),
	},
	Columns: []Column{
		{Field: "id", Title: "ID"},
		{Field: "supplierCode", Title: "Supplier Code"},
		{Field: "supplierName", Title: "Supplier Name"},
		{Field: "contactPerson", Title: "Contact Person"},
		{Field: "phoneNumber", Title: "Phone Number"},
		{Field: "location", Title: "Location"},
		{Field: "taxId", Title: "Tax ID"},
		{Field: "status", Title: "Status"},
	},
}

var Brands = &Schema{
	Name:       "brands",
	Title:      "Brands",
	Singular:   "brand",
	Endpoint:   "/brands",
	ListPath:   "/brands",
	LabelField: "brandName",
	Fields: []Field{
		{Name: "brandName", Label: "Brand Name", Kind: Text, Required: true},
		{Name: "brandCode", Label: "Brand Code", Kind: Text, Required: true},
		{Name: "description", Label: "Description", Kind: Text},
		{Name: "logoImage", Label: "Logo", Kind: Image},
	},
	Columns: []Column{
		{Field: "id", Title: "ID"},
		{Field: "brandCode", Title: "Brand Code"},
		{Field: "brandName", Title: "Brand Name"},
		{Field: "description", Title: "Description"},
		{Field: "logoImage", Title: "Logo"},
	},
}

var ItemGroups = &Schema{
	Name:       "item-groups",
	Title:      "Item Groups",
	Singular:   "item-group",
	Endpoint:   "/item-groups",
	ListPath:   "/item-groups",
	LabelField: "groupName",
	Fields: []Field{
		{Name: "groupName", Label: "Group Name", Kind: Text, Required: true},
		{Name: "groupCode", Label: "Group Code", Kind: Text, Required: true},
		statusField(),
		{Name: "description", Label: "Description", Kind: Text},
	},
	Columns: []Column{
		{Field: "id", Title: "ID"},
		{Field: "groupCode", Title: "Group Code"},
		{Field: "groupName", Title: "Group Name"},
		{Field: "description", Title: "Description"},
		{Field: "status", Title: "Status"},
	},
}

// Items are listed through the inventory endpoint, which resolves brand, supplier and group names.
var Items = &Schema{
	Name:       "items",
	Title:      "Items",
	Singular:   "item",
	Endpoint:   "/items",
	ListPath:   "/inventory",
	LabelField: "itemName",
	Fields: []Field{
		{Name: "itemName", Label: "Item Name", Kind: Text, Required: true},
		{Name: "itemCode", Label: "Item Code", Kind: Text, Required: true},
		{Name: "description", Label: "Description", Kind: Text},
		{Name: "unit", Label: "Unit", Kind: Enum, Required: true, Options: unitOptions},
		{Name: "brandId", Label: "Brand", Kind: Reference, Ref: "brands"},
		{Name: "supplierId", Label: "Supplier", Kind: Reference, Ref: "suppliers"},
		{Name: "itemGroupId", Label: "Item Group", Kind: Reference, Ref: "item-groups"},
		{Name: "storeId", Label: "Store", Kind: Reference, Required: true, Ref: "stores"},
		{Name: "costPrice", Label: "Cost Price", Kind: Number, Required: true, Default: 0, Min: atLeast(0)},
		{Name: "sellingPrice", Label: "Selling Price", Kind: Number, Required: true, Default: 0, Min: atLeast(0)},
		{Name: "taxPercentage", Label: "Tax Percentage", Kind: Number, Default: 0, Min: atLeast(0)},
		{Name: "discount", Label: "Discount", Kind: Number, Default: 0, Min: atLeast(0)},
		{Name: "minStockLevel", Label: "Minimum Stock Level", Kind: Integer, Required: true, Default: 0, Min: atLeast(0)},
		{Name: "currentStock", Label: "Current Stock", Kind: Integer, Required: true, Default: 0, Min: atLeast(0)},
		statusField(),
		{Name: "image", Label: "Image", Kind: Image},
	},
	Columns: []Column{
		{Field: "id", Title: "ID"},
		{Field: "itemCode", Title: "Item Code"},
		{Field: "itemName", Title: "Item Name"},
		{Field: "brandName", Title: "Brand"},
		{Field: "supplierName", Title: "Supplier"},
		{Field: "groupName", Title: "Group"},
		{Field: "costPrice", Title: "Cost Price", Money: true},
		{Field: "sellingPrice", Title: "Selling Price", Money: true},
		{Field: "currentStock", Title: "Stock"},
		{Field: "status", Title: "Status"},
	},
}

var registry = []*Schema{Users, Customers, Stores, Suppliers, Brands, Items, ItemGroups}

// All returns every schema in menu order.
func All() []*Schema {
	out := make([]*Schema, len(registry))
	copy(out, registry)
	return out
}

// Lookup finds a schema by collection name.
func Lookup(name string) (*Schema, bool) {
	for _, s := range registry {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}
