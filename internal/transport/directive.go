// Package transport holds the boundary types toward the telephony and
// messaging provider: the XML directive language returned to voice
// webhooks and the REST client used to push outbound chat messages.
package transport

import (
	"encoding/xml"
	"fmt"
)

// Voice and locale used for every spoken prompt.
const (
	Voice    = "Polly.Cristiano"
	Language = "ro-RO"
)

// Say speaks text to the caller in the configured voice.
type Say struct {
	XMLName  xml.Name `xml:"Say"`
	Voice    string   `xml:"voice,attr,omitempty"`
	Language string   `xml:"language,attr,omitempty"`
	Text     string   `xml:",chardata"`
}

// Gather collects DTMF digits and posts them to the action URL.
type Gather struct {
	XMLName   xml.Name `xml:"Gather"`
	Input     string   `xml:"input,attr,omitempty"`
	NumDigits int      `xml:"numDigits,attr,omitempty"`
	Action    string   `xml:"action,attr,omitempty"`
	Method    string   `xml:"method,attr,omitempty"`
	Say       []Say
}

// Dial transfers the call to another number.
type Dial struct {
	XMLName xml.Name `xml:"Dial"`
	Number  string   `xml:",chardata"`
}

// Response is the directive document returned to a voice webhook.
type Response struct {
	XMLName xml.Name `xml:"Response"`
	Gather  *Gather
	Say     []Say
	Dial    *Dial
}

// SpeakRO builds a Say directive in the configured Romanian voice.
func SpeakRO(text string) Say {
	return Say{Voice: Voice, Language: Language, Text: text}
}

// Render serializes the directive document with the XML declaration the
// provider expects.
func (r Response) Render() ([]byte, error) {
	body, err := xml.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("render voice directive: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}
