package orders

import (
	"io"

	"github.com/tealeg/xlsx"

	"github.com/Keoroanthony/go-storefront/internal/models"
)

var exportHeaders = []string{
	"Order Code", "Created", "Customer", "Phone", "City", "Pincode",
	"Status", "Items", "Subtotal", "Shipping", "Total", "Payment Reference",
}

// WriteXLSX writes one row per order to w.
func WriteXLSX(w io.Writer, orders []models.Order) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Orders")
	if err != nil {
		return err
	}

	headerRow := sheet.AddRow()
	for _, h := range exportHeaders {
		headerRow.AddCell().SetValue(h)
	}

	for _, o := range orders {
		var qty uint
		for _, item := range o.Items {
			qty += item.Quantity
		}
		reference := ""
		if o.Payment != nil {
			reference = o.Payment.ManualReference
		}

		row := sheet.AddRow()
		row.AddCell().SetValue(o.OrderCode)
		row.AddCell().SetValue(o.CreatedAt.Format("2006-01-02 15:04:05"))
		row.AddCell().SetValue(o.FullName)
		row.AddCell().SetValue(o.Phone)
		row.AddCell().SetValue(o.City)
		row.AddCell().SetValue(o.Pincode)
		row.AddCell().SetValue(o.Status.Label())
		row.AddCell().SetValue(int(qty))
		row.AddCell().SetValue(o.Subtotal.StringFixed(2))
		row.AddCell().SetValue(o.ShippingFee.StringFixed(2))
		row.AddCell().SetValue(o.Total.StringFixed(2))
		row.AddCell().SetValue(reference)
	}

	return file.Write(w)
}
