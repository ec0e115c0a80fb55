package request

import (
	"encoding/json"
	"io"

	validation "github.com/go-ozzo/ozzo-validation"
)

// MaxTextLength keeps the rendered delivery within a single Telegram message.
const MaxTextLength = 4000

// Reminder is the submission payload shared by the web app and the JSON API.
type Reminder struct {
	Text string `json:"text"`
	Time string `json:"time"`
}

func (i *Reminder) FromJSON(r io.Reader) error {
	e := json.NewDecoder(r)
	return e.Decode(i)
}

func (i *Reminder) FromString(data string) error {
	return json.Unmarshal([]byte(data), i)
}

func (i Reminder) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.Text, validation.RuneLength(0, MaxTextLength)),
		validation.Field(&i.Time, validation.Required, validation.Length(1, 64)),
	)
}
