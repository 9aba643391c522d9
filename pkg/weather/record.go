package weather

import "encoding/json"

// Record is the normalized result of one lookup. A record either carries the
// success fields or a single Error message, never both.
type Record struct {
	Location string
	Region   string
	Country  string
	Lat      float64
	Lon      float64
	Weather  string
	TempC    float64

	Error string
}

type successJSON struct {
	Location string  `json:"location"`
	Region   string  `json:"region"`
	Country  string  `json:"country"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Weather  string  `json:"weather"`
	TempC    float64 `json:"temp_c"`
}

type errorJSON struct {
	Error string `json:"error"`
}

// errorRecord builds the error shape.
func errorRecord(msg string) Record {
	return Record{Error: msg}
}

// OK reports whether r is a success record.
func (r Record) OK() bool {
	return r.Error == ""
}

// MarshalJSON emits exactly one of the two record shapes.
func (r Record) MarshalJSON() ([]byte, error) {
	if !r.OK() {
		return json.Marshal(errorJSON{Error: r.Error})
	}
	return json.Marshal(successJSON{
		Location: r.Location,
		Region:   r.Region,
		Country:  r.Country,
		Lat:      r.Lat,
		Lon:      r.Lon,
		Weather:  r.Weather,
		TempC:    r.TempC,
	})
}

// UnmarshalJSON accepts either record shape.
func (r *Record) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if raw, ok := fields["error"]; ok {
		var msg string
		if err := json.Unmarshal(raw, &msg); err != nil {
			return err
		}
		*r = errorRecord(msg)
		return nil
	}
	var s successJSON
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*r = Record{
		Location: s.Location,
		Region:   s.Region,
		Country:  s.Country,
		Lat:      s.Lat,
		Lon:      s.Lon,
		Weather:  s.Weather,
		TempC:    s.TempC,
	}
	return nil
}
