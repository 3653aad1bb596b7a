package request

import (
	"bytes"
	"encoding/json"
)

// FreeText campo numérico tipeado a mano
// Acepta string o número JSON y guarda el texto tal cual
type FreeText string

// UnmarshalJSON implementa json.Unmarshaler
func (f *FreeText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FreeText(s)
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	*f = FreeText(data)
	return nil
}
