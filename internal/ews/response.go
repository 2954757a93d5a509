package ews

import (
	"encoding/xml"
	"fmt"
)

// Response parsing for the EWS envelopes. encoding/xml matches on local
// element names here, so namespace prefixes in the wire form don't matter.

type responseFolder struct {
	FolderID    attrID `xml:"FolderId"`
	DisplayName string `xml:"DisplayName"`
	TotalCount  uint32 `xml:"TotalCount"`
	UnreadCount uint32 `xml:"UnreadCount"`
}

type attrID struct {
	ID string `xml:"Id,attr"`
}

type mailboxAddress struct {
	Name         string `xml:"Name"`
	EmailAddress string `xml:"EmailAddress"`
}

type responseItem struct {
	ItemID           attrID           `xml:"ItemId"`
	Subject          string           `xml:"Subject"`
	DateTimeReceived string           `xml:"DateTimeReceived"`
	From             mailboxAddress   `xml:"From>Mailbox"`
	To               []mailboxAddress `xml:"ToRecipients>Mailbox"`
	IsRead           bool             `xml:"IsRead"`
	Body             string           `xml:"Body"`
}

type findFolderEnvelope struct {
	XMLName xml.Name `xml:"Envelope"`
	Message struct {
		ResponseClass string           `xml:"ResponseClass,attr"`
		ResponseCode  string           `xml:"ResponseCode"`
		MessageText   string           `xml:"MessageText"`
		Folders       []responseFolder `xml:"RootFolder>Folders>Folder"`
	} `xml:"Body>FindFolderResponse>ResponseMessages>FindFolderResponseMessage"`
}

type getFolderEnvelope struct {
	XMLName xml.Name `xml:"Envelope"`
	Message struct {
		ResponseClass string           `xml:"ResponseClass,attr"`
		ResponseCode  string           `xml:"ResponseCode"`
		MessageText   string           `xml:"MessageText"`
		Folders       []responseFolder `xml:"Folders>Folder"`
	} `xml:"Body>GetFolderResponse>ResponseMessages>GetFolderResponseMessage"`
}

type findItemEnvelope struct {
	XMLName xml.Name `xml:"Envelope"`
	Message struct {
		ResponseClass string         `xml:"ResponseClass,attr"`
		ResponseCode  string         `xml:"ResponseCode"`
		MessageText   string         `xml:"MessageText"`
		Items         []responseItem `xml:"RootFolder>Items>Message"`
	} `xml:"Body>FindItemResponse>ResponseMessages>FindItemResponseMessage"`
}

// checkResponseClass turns a server-reported Error response message into a
// TransportError carrying the response code.
func checkResponseClass(class, code, text, endpoint string) error {
	if class == "" {
		return &ParseError{Reason: "response message missing ResponseClass"}
	}
	if class == "Error" {
		detail := code
		if text != "" {
			detail = fmt.Sprintf("%s: %s", code, text)
		}
		return &TransportError{Endpoint: endpoint, Body: detail}
	}
	return nil
}

func parseFindFolder(data []byte, endpoint string) ([]responseFolder, error) {
	var env findFolderEnvelope
	if err := xml.Unmarshal(data, &env); err != nil {
		return nil, &ParseError{Reason: fmt.Sprintf("decoding FindFolder response: %v", err)}
	}
	m := env.Message
	if err := checkResponseClass(m.ResponseClass, m.ResponseCode, m.MessageText, endpoint); err != nil {
		return nil, err
	}
	return m.Folders, nil
}

func parseGetFolder(data []byte, endpoint string) (*responseFolder, error) {
	var env getFolderEnvelope
	if err := xml.Unmarshal(data, &env); err != nil {
		return nil, &ParseError{Reason: fmt.Sprintf("decoding GetFolder response: %v", err)}
	}
	m := env.Message
	if err := checkResponseClass(m.ResponseClass, m.ResponseCode, m.MessageText, endpoint); err != nil {
		return nil, err
	}
	if len(m.Folders) == 0 {
		return nil, &ParseError{Reason: "GetFolder response contains no folder"}
	}
	return &m.Folders[0], nil
}

func parseFindItem(data []byte, endpoint string) ([]responseItem, error) {
	var env findItemEnvelope
	if err := xml.Unmarshal(data, &env); err != nil {
		return nil, &ParseError{Reason: fmt.Sprintf("decoding FindItem response: %v", err)}
	}
	m := env.Message
	if err := checkResponseClass(m.ResponseClass, m.ResponseCode, m.MessageText, endpoint); err != nil {
		return nil, err
	}
	return m.Items, nil
}
