package email

// BaseTemplate wraps every message body.
const BaseTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <style>
        body { margin: 0; padding: 0; font-family: -apple-system, 'Segoe UI', Roboto, Arial, sans-serif; background: #f6f4f0; color: #2b2b2b; }
        .container { max-width: 600px; margin: 0 auto; padding: 32px 16px; }
        .card { background: #ffffff; border-radius: 10px; padding: 28px; border: 1px solid #e7e2d9; }
        h1 { font-size: 22px; color: #b5653a; margin: 0 0 20px; text-align: center; }
        h2 { font-size: 20px; margin: 0 0 12px; }
        p { font-size: 15px; line-height: 1.6; margin: 0 0 14px; color: #4a4a4a; }
        .btn { display: inline-block; background: #b5653a; color: #ffffff !important; text-decoration: none; padding: 12px 24px; border-radius: 6px; font-weight: 600; }
        .footer { text-align: center; margin-top: 24px; font-size: 12px; color: #9a948a; }
    </style>
</head>
<body>
    <div class="container">
        <div class="card">
            <h1>Vendora</h1>
            {{.Content}}
        </div>
        <div class="footer">You are receiving this because you have an account on Vendora.</div>
    </div>
</body>
</html>`

const WelcomeTemplate = `
<h2>Welcome, {{.Name}}!</h2>
<p>Your {{.Role}} account is ready.</p>
<p><a class="btn" href="{{.DashboardURL}}">Open dashboard</a></p>
`

const RequestSubmittedTemplate = `
<h2>New booking request</h2>
<p>{{.VendorName}}, a customer asked about your services starting {{.FirstDate}}.</p>
<p><a class="btn" href="{{.RequestURL}}">Review request</a></p>
`

const RequestUpdatedTemplate = `
<h2>Booking request update</h2>
<p>Hi {{.Name}}, your request with {{.VendorName}} is now <strong>{{.Status}}</strong>.</p>
<p><a class="btn" href="{{.RequestURL}}">View request</a></p>
`

const OnboardingApprovedTemplate = `
<h2>Application approved</h2>
<p>Hi {{.ContactName}}, {{.BusinessName}} has been approved to list on Vendora.</p>
<p>Use the link below to create your vendor account. The link expires in 7 days.</p>
<p><a class="btn" href="{{.InviteURL}}">Accept invitation</a></p>
`

const OnboardingRejectedTemplate = `
<h2>Application reviewed</h2>
<p>Hi {{.ContactName}}, we are unable to list {{.BusinessName}} at this time.</p>
{{if .Reason}}<p>Reason: {{.Reason}}</p>{{end}}
`
