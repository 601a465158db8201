package pix

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// EMV BR-Code field ids, per the Banco Central do Brasil PIX manual.
const (
	idPayloadFormatIndicator  = "00"
	idPointOfInitiationMethod = "01"
	idMerchantAccountInfo     = "26"
	idMerchantCategoryCode    = "52"
	idTransactionCurrency     = "53"
	idTransactionAmount       = "54"
	idCountryCode             = "58"
	idMerchantName            = "59"
	idMerchantCity            = "60"
	idAdditionalDataField     = "62"
	idCRC16                   = "63"

	idMerchantAccountGUI = "00"
	idMerchantAccountKey = "01"
	idAdditionalDataTxID = "05"

	pixGUI      = "br.gov.bcb.pix"
	currencyBRL = "986"

	maxMerchantNameLen = 25
	maxMerchantCityLen = 15
	maxTxIDLen         = 25
)

// BuildPayload assembles a complete EMV BR-Code string for a PIX charge,
// terminated by its CRC16 checksum. Deterministic and side-effect free.
func BuildPayload(amount float64, merchantKey, merchantName, merchantCity, transactionID string) string {
	var sb strings.Builder

	sb.WriteString(tlv(idPayloadFormatIndicator, "01"))
	sb.WriteString(tlv(idPointOfInitiationMethod, "12"))

	account := tlv(idMerchantAccountGUI, pixGUI) + tlv(idMerchantAccountKey, merchantKey)
	sb.WriteString(tlv(idMerchantAccountInfo, account))

	sb.WriteString(tlv(idMerchantCategoryCode, "0000"))
	sb.WriteString(tlv(idTransactionCurrency, currencyBRL))

	if amount > 0 {
		sb.WriteString(tlv(idTransactionAmount, decimal.NewFromFloat(amount).StringFixed(2)))
	}

	sb.WriteString(tlv(idCountryCode, "BR"))
	sb.WriteString(tlv(idMerchantName, truncate(merchantName, maxMerchantNameLen)))
	sb.WriteString(tlv(idMerchantCity, truncate(merchantCity, maxMerchantCityLen)))

	txid := truncate(transactionID, maxTxIDLen)
	if txid == "" {
		txid = "***"
	}
	sb.WriteString(tlv(idAdditionalDataField, tlv(idAdditionalDataTxID, txid)))

	// The checksum covers everything up to and including the CRC field's
	// own id and length.
	payload := sb.String() + idCRC16 + "04"

	return payload + fmt.Sprintf("%04X", CRC16([]byte(payload)))
}

func tlv(id, value string) string {
	return fmt.Sprintf("%s%02d%s", id, len(value), value)
}

// truncate cuts on rune boundaries so accented names never leave a broken
// byte sequence in the payload.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}

	runes := []rune(s)
	for len(runes) > 0 && len(string(runes)) > max {
		runes = runes[:len(runes)-1]
	}

	return string(runes)
}
