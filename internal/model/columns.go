package model

// Canonical column keys of the transport sheet contract. The YAML layout
// file maps these keys to workbook positions; UpdateSets address cells by
// key so the matcher never hardcodes a column letter.
const (
	ColTripID        = "sm"
	ColScheduledDate = "data_prev_carregamento"
	ColShipper       = "expedidor"
	ColOriginCity    = "cidade_origem"
	ColOriginState   = "ufo"
	ColBuyer         = "destinatario_venda"
	ColConsignee     = "destinatario"
	ColReceiver      = "recebedor"
	ColDestCity      = "cidade_destino"
	ColDestState     = "ufd"
	ColProduct       = "produto"
	ColDriver        = "motorista"
	ColTractor       = "cavalo"
	ColTrailer1      = "carreta1"
	ColTrailer2      = "carreta2"
	ColCarrier       = "transportadora"
	ColInvoiceNumber = "nfe"
	ColVolume        = "volume_l"
	ColLoadingDate   = "data_de_carregamento"
	ColLoadingTime   = "horario_de_carregamento"
	ColArrivalDate   = "data_chegada"
	ColUnloadDate    = "data_descarga"
	ColStatus        = "status"
)

// TransportColumns is the ordered transport-sheet layout used when a layout
// file does not override it. Access is positional in the workbooks; this
// list is the one place the order is written down.
var TransportColumns = []string{
	ColTripID, ColScheduledDate, ColShipper, ColOriginCity, ColOriginState,
	ColBuyer, ColConsignee, ColReceiver, ColDestCity, ColDestState,
	ColProduct, ColDriver, ColTractor, ColTrailer1, ColTrailer2, ColCarrier,
	ColInvoiceNumber, ColVolume, ColLoadingDate, ColLoadingTime,
	ColArrivalDate, ColUnloadDate, ColStatus,
}
