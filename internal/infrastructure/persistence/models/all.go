package models

// All lists every model in dependency order for gorm's AutoMigrate.
func All() []any {
	return []any{
		&UserModel{},
		&TableSettingsModel{},
		&ProductModel{},
		&ProductComponentModel{},
		&WarehouseModel{},
		&InventoryItemModel{},
		&ClientModel{},
		&ContactModel{},
		&OrderModel{},
		&OrderItemModel{},
		&ManufacturingOrderModel{},
		&ShipmentModel{},
		&ShipmentItemModel{},
		&PositionModel{},
		&DepartmentModel{},
		&WorkerModel{},
		&InvoiceModel{},
		&InvoiceItemModel{},
		&SupplierReceiptModel{},
		&ReceiptItemModel{},
		&PaymentModel{},
	}
}
