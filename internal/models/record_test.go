package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilingValueMarshalDiscriminates(t *testing.T) {
	plain, err := json.Marshal(PlainFiling("Anniversary Date"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"plain","plain":"Anniversary Date"}`, string(plain))

	list, err := json.Marshal(ListFiling([]LabeledValue{{Label: "2023", Value: "Filed"}}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"list","items":[{"label":"2023","value":"Filed"}]}`, string(list))

	_, err = json.Marshal(FilingValue{Kind: FilingKind("bogus")})
	assert.ErrorContains(t, err, "unknown filing kind")
}

func TestFilingValueUnmarshalRestoresVariant(t *testing.T) {
	var v FilingValue
	require.NoError(t, json.Unmarshal([]byte(`{"kind":"plain","plain":"Filed"}`), &v))
	assert.Equal(t, FilingPlain, v.Kind)
	assert.Equal(t, "Filed", v.Plain)
	assert.Nil(t, v.Items)

	require.NoError(t, json.Unmarshal([]byte(`{"kind":"list","items":[{"label":"2022","value":"Overdue"}]}`), &v))
	assert.Equal(t, FilingList, v.Kind)
	assert.Empty(t, v.Plain)
	require.Len(t, v.Items, 1)
	assert.Equal(t, "2022", v.Items[0].Label)

	assert.ErrorContains(t, json.Unmarshal([]byte(`{"kind":"maybe"}`), &v), "unknown filing kind")
}

func TestCorporationRecordCacheRoundTrip(t *testing.T) {
	record := CorporationRecord{
		CorporationID: "1234567",
		Details:       []LabeledValue{{Label: "Corporate Name", Value: "ACME WIDGETS INC."}},
		Address:       "100 Main St, Toronto ON, Canada",
		AnnualFilings: []FilingEntry{
			{Label: "Annual Filing Period", Value: PlainFiling("Anniversary Date")},
			{Label: "Status of Annual Filings", Value: ListFiling([]LabeledValue{{Label: "2023", Value: "Filed"}})},
		},
	}

	encoded, err := json.Marshal(record)
	require.NoError(t, err)

	var decoded CorporationRecord
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.Equal(t, record, decoded)
}
