package ingest

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func datLine(fields map[int]string) string {
	parts := make([]string, 26)
	parts[0] = "B"
	parts[1] = "001"
	parts[2] = "PROP1"
	parts[3] = "1"
	parts[13] = "20200115"
	parts[14] = "20200301"
	parts[15] = "750000"
	parts[23] = "AB1234"
	for i, v := range fields {
		parts[i] = v
	}
	return strings.Join(parts, ";")
}

func TestParseRecord(t *testing.T) {
	line := datLine(map[int]string{
		8:  "GEORGE STREET",
		9:  "SYDNEY",
		10: "2000",
		11: "320.5",
		18: "RESIDENCE",
	})

	sale := ParseRecord(line, testNow)
	require.NotNil(t, sale)

	assert.Equal(t, "PROP1", sale.PropertyID)
	assert.Equal(t, "1", sale.SaleCounter)
	assert.Equal(t, "AB1234", sale.DealingNumber)
	assert.Equal(t, "George Street", sale.StreetName)
	assert.Equal(t, "Sydney", sale.Suburb)
	assert.Equal(t, 2000, sale.PostCode)
	assert.Equal(t, "Residence", sale.PrimaryPurpose)

	require.NotNil(t, sale.Area)
	assert.Equal(t, 320.5, *sale.Area)
	require.NotNil(t, sale.PurchasePrice)
	assert.Equal(t, 750000.0, *sale.PurchasePrice)
	require.NotNil(t, sale.ContractDate)
	assert.Equal(t, time.Date(2020, 1, 15, 0, 0, 0, 0, time.UTC), *sale.ContractDate)
}

func TestParseRecordNonSaleLine(t *testing.T) {
	assert.Nil(t, ParseRecord("A;001;SOMETHING", testNow))
	assert.Nil(t, ParseRecord("C;001;PROP1", testNow))
	assert.Nil(t, ParseRecord("", testNow))
}

func TestParseRecordTruncatedLine(t *testing.T) {
	assert.Nil(t, ParseRecord("B;001;PROP1;1", testNow))
}

func TestParseRecordFutureContractDate(t *testing.T) {
	line := datLine(map[int]string{13: "20990101"})
	assert.Nil(t, ParseRecord(line, testNow))
}

func TestParseRecordMissingOptionalFields(t *testing.T) {
	line := datLine(map[int]string{
		10: "",
		11: "",
		13: "",
		14: "",
		15: "",
	})

	sale := ParseRecord(line, testNow)
	require.NotNil(t, sale)

	assert.Equal(t, 0, sale.PostCode)
	assert.Nil(t, sale.Area)
	assert.Nil(t, sale.ContractDate)
	assert.Nil(t, sale.SettlementDate)
	assert.Nil(t, sale.PurchasePrice)
}

func TestParseRecordBadNumbers(t *testing.T) {
	line := datLine(map[int]string{
		10: "N/A",
		15: "not-a-price",
	})

	sale := ParseRecord(line, testNow)
	require.NotNil(t, sale)
	assert.Equal(t, 0, sale.PostCode)
	assert.Nil(t, sale.PurchasePrice)
}
