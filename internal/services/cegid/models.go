package cegid

import "encoding/xml"

// SOAP 1.1 envelope for the Cegid Retail SaleDocument service.
type soapEnvelope struct {
	XMLName xml.Name `xml:"s:Envelope"`
	XmlnsS  string   `xml:"xmlns:s,attr"`
	Body    soapBody `xml:"s:Body"`
}

type soapBody struct {
	Create createElement `xml:"Create"`
}

type createElement struct {
	Xmlns         string        `xml:"xmlns,attr"`
	ClientContext clientContext `xml:"clientContext"`
	CreateRequest createRequest `xml:"createRequest"`
}

type clientContext struct {
	DatabaseID string `xml:"DatabaseId"`
}

type createRequest struct {
	DeliveryAddress deliveryAddress `xml:"DeliveryAddress"`
	Header          documentHeader  `xml:"Header"`
	Lines           documentLines   `xml:"Lines"`
	Payments        documentPays    `xml:"Payments"`
}

type deliveryAddress struct {
	FirstName string `xml:"FirstName"`
}

type documentHeader struct {
	Active            bool              `xml:"Active"`
	Comment           string            `xml:"Comment"`
	CustomerID        string            `xml:"CustomerId"`
	Date              string            `xml:"Date"`
	ExternalReference string            `xml:"ExternalReference"`
	InternalReference string            `xml:"InternalReference"`
	OmniChannel       omniChannel       `xml:"OmniChannel"`
	Origin            string            `xml:"Origin"`
	StoreID           string            `xml:"StoreId"`
	Type              string            `xml:"Type"`
	UserDefinedTables userDefinedTables `xml:"UserDefinedTables"`
	WarehouseID       string            `xml:"WarehouseId"`
}

type omniChannel struct {
	BillingStatus  string `xml:"BillingStatus"`
	DeliveryType   string `xml:"DeliveryType"`
	FollowUpStatus string `xml:"FollowUpStatus"`
	PaymentStatus  string `xml:"PaymentStatus"`
	ReturnStatus   string `xml:"ReturnStatus"`
	ShippingStatus string `xml:"ShippingStatus"`
}

type userDefinedTables struct {
	Entries []userDefinedTable `xml:"UserDefinedTable"`
}

type userDefinedTable struct {
	ID    int    `xml:"Id"`
	Value string `xml:"Value"`
}

type documentLines struct {
	Lines []createLine `xml:"Create_Line"`
}

type createLine struct {
	ExternalReference string         `xml:"ExternalReference"`
	ItemIdentifier    itemIdentifier `xml:"ItemIdentifier"`
	NetUnitPrice      float64        `xml:"NetUnitPrice"`
	Origin            string         `xml:"Origin"`
	Quantity          float64        `xml:"Quantity"`
	UnitPrice         float64        `xml:"UnitPrice"`
}

type itemIdentifier struct {
	Reference string `xml:"Reference"`
}

type documentPays struct {
	Payments []createPayment `xml:"Create_Payment"`
}

type createPayment struct {
	Amount            float64 `xml:"Amount"`
	CurrencyID        string  `xml:"CurrencyId"`
	DueDate           string  `xml:"DueDate"`
	ID                int     `xml:"Id"`
	IsReceivedPayment int     `xml:"IsReceivedPayment"`
	MethodID          int     `xml:"MethodId"`
}
