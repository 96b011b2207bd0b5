package main

// Copy shown around the report content.
var (
	ReportNote = `Sections mirror the original engineering report. For details, see the full PDF in the repo.`

	FooterNote = `Built for skim-speed; numbers up front.`

	ContactSuccess = `Thank you for your message! I'll get back to you soon.`

	ContactFailure = `Sorry, there was an error sending your message. Please try again later.`

	ContactInvalid = `Please fill in your name, a valid email address and a message.`

	ContactThrottled = `Too many messages from your address. Please wait a minute and try again.`
)
