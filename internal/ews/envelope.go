package ews

import (
	"bytes"
	"encoding/xml"
	"fmt"
)

// SOAP request envelopes for the four EWS call shapes the gateway needs:
// shallow folder enumeration (auth probe), deep folder enumeration (LIST),
// folder properties by id (SELECT) and item enumeration by folder (FETCH).

const envelopeHeader = `<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/"
               xmlns:t="http://schemas.microsoft.com/exchange/services/2006/types">
  <soap:Body>`

const envelopeFooter = `
  </soap:Body>
</soap:Envelope>`

// probeRequestBody is a shallow FindFolder against the inbox, issued only to
// validate a Basic authorization header against the server.
func probeRequestBody() string {
	return envelopeHeader + `
    <FindFolder xmlns="http://schemas.microsoft.com/exchange/services/2006/messages"
                xmlns:t="http://schemas.microsoft.com/exchange/services/2006/types"
                Traversal="Shallow">
      <FolderShape>
        <t:BaseShape>IdOnly</t:BaseShape>
      </FolderShape>
      <ParentFolderIds>
        <t:DistinguishedFolderId Id="inbox"/>
      </ParentFolderIds>
    </FindFolder>` + envelopeFooter
}

// findFolderRequestBody is a deep FindFolder scoped to parentFolderXML, used
// for LIST and for display-name resolution.
func findFolderRequestBody(parentFolderXML string) string {
	return envelopeHeader + fmt.Sprintf(`
    <FindFolder xmlns="http://schemas.microsoft.com/exchange/services/2006/messages"
                xmlns:t="http://schemas.microsoft.com/exchange/services/2006/types"
                Traversal="Deep">
      <FolderShape>
        <t:BaseShape>Default</t:BaseShape>
      </FolderShape>
      <ParentFolderIds>
        %s
      </ParentFolderIds>
    </FindFolder>`, parentFolderXML) + envelopeFooter
}

// getFolderRequestBody asks for one folder's counters.
func getFolderRequestBody(folderIDXML string) string {
	return envelopeHeader + fmt.Sprintf(`
    <GetFolder xmlns="http://schemas.microsoft.com/exchange/services/2006/messages"
               xmlns:t="http://schemas.microsoft.com/exchange/services/2006/types">
      <FolderShape>
        <t:BaseShape>Default</t:BaseShape>
        <t:AdditionalProperties>
          <t:FieldURI FieldURI="folder:TotalCount"/>
          <t:FieldURI FieldURI="folder:UnreadCount"/>
        </t:AdditionalProperties>
      </FolderShape>
      <FolderIds>
        %s
      </FolderIds>
    </GetFolder>`, folderIDXML) + envelopeFooter
}

// findItemRequestBody enumerates items in one folder with the properties the
// FETCH renderer needs.
func findItemRequestBody(parentFolderXML string) string {
	return envelopeHeader + fmt.Sprintf(`
    <FindItem xmlns="http://schemas.microsoft.com/exchange/services/2006/messages"
              xmlns:t="http://schemas.microsoft.com/exchange/services/2006/types"
              Traversal="Shallow">
      <ItemShape>
        <t:BaseShape>IdOnly</t:BaseShape>
        <t:AdditionalProperties>
          <t:FieldURI FieldURI="item:Subject"/>
          <t:FieldURI FieldURI="item:DateTimeReceived"/>
          <t:FieldURI FieldURI="message:From"/>
          <t:FieldURI FieldURI="message:ToRecipients"/>
          <t:FieldURI FieldURI="message:IsRead"/>
        </t:AdditionalProperties>
      </ItemShape>
      <IndexedPageItemView MaxEntriesReturned="512" Offset="0" BasePoint="Beginning"/>
      <ParentFolderIds>
        %s
      </ParentFolderIds>
    </FindItem>`, parentFolderXML) + envelopeFooter
}

func distinguishedFolderXML(id string) string {
	return fmt.Sprintf(`<t:DistinguishedFolderId Id="%s"/>`, escapeAttr(id))
}

func folderIDXML(id string) string {
	return fmt.Sprintf(`<t:FolderId Id="%s"/>`, escapeAttr(id))
}

// escapeAttr escapes a client-supplied value for interpolation into an XML
// attribute, so a quote or angle bracket in a mailbox argument cannot alter
// the envelope structure.
func escapeAttr(s string) string {
	var buf bytes.Buffer
	if err := xml.EscapeText(&buf, []byte(s)); err != nil {
		return ""
	}
	return buf.String()
}
