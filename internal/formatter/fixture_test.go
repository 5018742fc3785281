package formatter

import "github.com/tordrt/pgscaffold/internal/schema"

func ptr[T any](v T) *T { return &v }

// sampleModel builds customers and orders with a foreign key between them
func sampleModel() *schema.Model {
	m := schema.NewModel()

	customers := m.AddTable("public", "customers")
	custID := &schema.Column{Name: "id", StoreType: "integer", ValueGeneration: schema.GenerationIdentityAlways, GeneratedOnAdd: true}
	email := &schema.Column{Name: "email", StoreType: "text"}
	customers.AddColumn(custID)
	customers.AddColumn(email)
	customers.Compact()
	customers.PrimaryKey = &schema.PrimaryKey{Table: customers, Name: "customers_pkey", Columns: []*schema.Column{custID}}
	customers.UniqueConstraints = []*schema.UniqueConstraint{
		{Table: customers, Name: "customers_email_key", Columns: []*schema.Column{email}},
	}

	orders := m.AddTable("public", "orders")
	orders.Comment = ptr("customer orders")
	orderID := &schema.Column{Name: "id", StoreType: "bigint", ValueGeneration: schema.GenerationSerial, GeneratedOnAdd: true}
	customerID := &schema.Column{Name: "customer_id", StoreType: "integer", Nullable: true}
	amount := &schema.Column{Name: "amount", StoreType: "money_amount", UnderlyingStoreType: ptr("numeric(12,2)"), DefaultSQL: ptr("1.00")}
	orders.AddColumn(orderID)
	orders.AddPlaceholder(schema.Dropped)
	orders.AddColumn(customerID)
	orders.AddColumn(amount)
	orders.Compact()
	orders.PrimaryKey = &schema.PrimaryKey{Table: orders, Name: "orders_pkey", Columns: []*schema.Column{orderID}}
	orders.ForeignKeys = []*schema.ForeignKey{{
		Table:            orders,
		Name:             "orders_customer_id_fkey",
		Columns:          []*schema.Column{customerID},
		PrincipalTable:   customers,
		PrincipalColumns: []*schema.Column{custID},
		OnDelete:         schema.Cascade,
	}}
	orders.Indexes = []*schema.Index{
		{Table: orders, Name: "orders_customer_idx", Columns: []*schema.Column{customerID}, IncludeColumns: []*schema.Column{amount}},
		{Table: orders, Name: "orders_open_idx", IsUnique: true, Columns: []*schema.Column{orderID}, Filter: ptr("(amount > 0)"), Method: ptr("hash")},
	}

	m.AddSequence(&schema.Sequence{Schema: "public", Name: "invoice_no", StoreType: "bigint", StartValue: ptr(int64(1000)), IncrementBy: 1})
	m.AddEnum(&schema.EnumType{Name: "mood", Labels: []string{"sad", "ok", "happy"}})
	m.AddExtension(&schema.Extension{Name: "pgcrypto", Schema: "public", Version: "1.3"})
	return m
}
