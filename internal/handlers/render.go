package handlers

import "github.com/gin-gonic/gin"

// apology renders the error page with the given status, the way every
// validation and business-rule failure is reported to the browser.
func apology(c *gin.Context, status int, msg string) {
	c.HTML(status, "apology.html", gin.H{
		"Code":    status,
		"Message": msg,
	})
}
