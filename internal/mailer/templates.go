package mailer

import "fmt"

func verificationBody(name, code string) string {
	return fmt.Sprintf(`
<div style="font-family:sans-serif;max-width:560px;margin:0 auto">
  <h2>Hi %s,</h2>
  <p>Thanks for registering for the university cricket tournament.</p>
  <p>Your verification code is:</p>
  <p style="font-size:28px;letter-spacing:6px;font-weight:bold">%s</p>
  <p>The code expires in 30 minutes.</p>
</div>`, name, code)
}

func welcomeBody(name string) string {
	return fmt.Sprintf(`
<div style="font-family:sans-serif;max-width:560px;margin:0 auto">
  <h2>Welcome, %s!</h2>
  <p>Your account is verified. Complete your profile to be eligible for
  team selection.</p>
</div>`, name)
}

func passwordResetBody(name, code, resetURL string) string {
	return fmt.Sprintf(`
<div style="font-family:sans-serif;max-width:560px;margin:0 auto">
  <h2>Hi %s,</h2>
  <p>We received a request to reset your password. Use the code below or
  follow the link:</p>
  <p style="font-size:28px;letter-spacing:6px;font-weight:bold">%s</p>
  <p><a href="%s">Reset your password</a></p>
  <p>The code expires in 60 minutes. If you did not request this, you can
  ignore this email.</p>
</div>`, name, code, resetURL)
}

func passwordChangedBody(name string) string {
	return fmt.Sprintf(`
<div style="font-family:sans-serif;max-width:560px;margin:0 auto">
  <h2>Hi %s,</h2>
  <p>Your password was changed. If this wasn't you, reset your password
  immediately and contact the tournament administrators.</p>
</div>`, name)
}

func loginCodeBody(name, code string) string {
	return fmt.Sprintf(`
<div style="font-family:sans-serif;max-width:560px;margin:0 auto">
  <h2>Hi %s,</h2>
  <p>Your login verification code is:</p>
  <p style="font-size:28px;letter-spacing:6px;font-weight:bold">%s</p>
  <p>The code expires in 15 minutes.</p>
</div>`, name, code)
}

func teamCreatedBody(name, teamName string) string {
	return fmt.Sprintf(`
<div style="font-family:sans-serif;max-width:560px;margin:0 auto">
  <h2>Congratulations, %s!</h2>
  <p>Your team <strong>%s</strong> is registered for the tournament and you
  are its captain.</p>
</div>`, name, teamName)
}
