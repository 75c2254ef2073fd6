package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/roulette/internal/model"
)

// marshalAppData converts AppData to the persisted JSON document.
func marshalAppData(data model.AppData) ([]byte, error) {
	b, err := json.Marshal(data.Clone())
	if err != nil {
		return nil, fmt.Errorf("marshal app data: %w", err)
	}
	return b, nil
}

// unmarshalAppData parses a persisted JSON document.
//
// Decoding starts from model.EmptyAppData(), so settings fields missing from
// older documents keep their defaults. A null or missing lists field yields an
// empty slice.
func unmarshalAppData(b []byte) (model.AppData, error) {
	data := model.EmptyAppData()
	if err := json.Unmarshal(b, &data); err != nil {
		return model.EmptyAppData(), fmt.Errorf("unmarshal app data: %w", err)
	}
	if data.Lists == nil {
		data.Lists = []model.List{}
	}
	for i := range data.Lists {
		if data.Lists[i].Items == nil {
			data.Lists[i].Items = []model.Item{}
		}
	}
	return data, nil
}
