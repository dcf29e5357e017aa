package notify

import (
	"fmt"
	"html"
	"strings"

	"github.com/geovantage/lead-intake/internal/leads"
)

// BuildLeadEmail renders the sales-inbox notification for a new lead.
// Replies go straight to the prospect.
func BuildLeadEmail(lead *leads.Lead, to, toName string) EmailMessage {
	subject := fmt.Sprintf("New lead: %s (%s)", lead.FullName(), lead.Organization)

	rows := [][2]string{
		{"Name", lead.FullName()},
		{"Email", lead.Email},
		{"Phone", lead.Phone},
		{"Organization", lead.Organization},
		{"Title", lead.Title},
	}
	if lead.ProjectType != "" {
		rows = append(rows, [2]string{"Project type", string(lead.ProjectType)})
	}
	if lead.Timeline != "" {
		rows = append(rows, [2]string{"Timeline", string(lead.Timeline)})
	}
	if lead.ClearanceLevel != "" {
		rows = append(rows, [2]string{"Clearance", string(lead.ClearanceLevel)})
	}
	rows = append(rows, [2]string{"Submitted", lead.SubmittedAt.Format("January 2, 2006 at 3:04 PM MST")})

	var text, markup strings.Builder
	markup.WriteString("<table>")
	for _, row := range rows {
		fmt.Fprintf(&text, "%s: %s\n", row[0], row[1])
		fmt.Fprintf(&markup, "<tr><th align=\"left\">%s</th><td>%s</td></tr>", row[0], html.EscapeString(row[1]))
	}
	markup.WriteString("</table>")
	fmt.Fprintf(&text, "\n%s\n\nReference: %s\n", lead.Message, lead.ID)
	fmt.Fprintf(&markup, "<p>%s</p><p><small>Reference: %s</small></p>",
		strings.ReplaceAll(html.EscapeString(lead.Message), "\n", "<br>"), html.EscapeString(lead.ID))

	return EmailMessage{
		To:      to,
		ToName:  toName,
		ReplyTo: lead.Email,
		Subject: subject,
		Body:    text.String(),
		HTML:    markup.String(),
	}
}
