package core

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_templateFS(t *testing.T) {
	for _, name := range []string{"_base.gohtml", "_base.txt", "welcome.gohtml", "welcome.txt", "salary_paid.gohtml", "salary_paid.txt"} {
		_, err := fs.Stat(templateFS, "templates/email/"+name)
		assert.NoError(t, err, name)
	}
}

func TestEmailMessage_Render(t *testing.T) {
	base := ContextData{AppName: "Vidyalaya", FrontendBaseURL: "http://localhost:3000"}

	tests := []struct {
		name     string
		msg      EmailMessage
		wantText []string
		wantHTML []string
	}{
		{
			name: "welcome",
			msg: EmailMessage{
				TemplateName: "welcome",
				TemplateData: map[string]interface{}{
					"Name":       "Asha",
					"Role":       "student",
					"Email":      "asha@school.test",
					"BusinessID": "STU-10-23",
				},
			},
			wantText: []string{"Hello Asha,", "Your student account has been created (ID: STU-10-23).", "The Vidyalaya team"},
			wantHTML: []string{"<strong>STU-10-23</strong>", `href="http://localhost:3000/login"`, "<title>Vidyalaya</title>"},
		},
		{
			name: "welcome without business id",
			msg: EmailMessage{
				TemplateName: "welcome",
				TemplateData: map[string]interface{}{"Name": "Admin", "Role": "admin", "Email": "admin@school.test", "BusinessID": ""},
			},
			wantText: []string{"Your admin account has been created."},
			wantHTML: []string{"Your admin account has been created.</p>"},
		},
		{
			name: "salary paid",
			msg: EmailMessage{
				TemplateName: "salary_paid",
				TemplateData: map[string]interface{}{"Name": "Sunita", "Period": "March 2024", "Amount": 33000.0, "Method": "bank"},
			},
			wantText: []string{"Your salary for March 2024 has been paid: 33000.00 (bank)."},
			wantHTML: []string{"<strong>33000.00</strong> (bank)"},
		},
		{
			name:     "plain body",
			msg:      EmailMessage{BodyStr: "hello"},
			wantText: []string{"hello"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.msg
			require.NoError(t, msg.Render(base))
			for _, want := range tt.wantText {
				assert.Contains(t, msg.TextContent, want)
			}
			for _, want := range tt.wantHTML {
				assert.Contains(t, msg.HTMLContent, want)
			}
			if len(tt.wantHTML) == 0 {
				assert.Empty(t, msg.HTMLContent)
			}
		})
	}
}
