package jersey

const (
	msgWelcome = `👕 Welcome to Jersey Management Bot!

Current Deadlines:
🗳️ Voting Deadline: %s (%s)
💳 Payment Deadline: %s (%s)

⚠️ No late submissions are accepted after deadlines!

Available Commands:
/vote - Vote for jersey design
/order - Place jersey order
/help - Show all commands`

	msgHelpUser = `📚 Jersey Bot Commands

For Everyone:
/start - Welcome message & deadlines
/vote - Vote for jersey designs
/order - Place your jersey order
/cancel - Cancel the current step-by-step form
/help - Show this message`

	msgHelpAdmin = `

For Admins Only:
📝 Design Management:
/add_design - Add new jersey design
/list_designs - View all designs
/edit_design <id> <name|desc|order|active> <value> - Edit a design
  (send a photo captioned "/edit_design <id> image" to replace the image)
/delete_design <id> - Remove a design

⏰ Deadline Management:
/set_vote_deadline YYYY-MM-DD HH:MM
/set_payment_deadline YYYY-MM-DD HH:MM
/deadlines - View current deadlines

📊 Monitoring:
/results - View voting results
/orders - View order statistics
/export - Export orders to CSV
/export_link - Get a download link for the CSV export`

	msgVoteDeadlinePassed = `❌ Voting deadline has passed!
Deadline was: %s
No late votes are accepted.`

	msgOrderDeadlinePassed = `❌ Payment deadline has passed!
Deadline was: %s
No late orders are accepted.`

	msgDuplicateVote  = "❌ You have already voted! Each user can only vote once."
	msgDuplicateOrder = "❌ You have already placed an order! Each user can only order once."

	msgOrderSuccess = `✅ Order placed successfully!

Order Summary:
👤 Name: %s
🔢 Number: %d
📝 Shirt Name: %s
📏 Size: %s
💳 Payment Receipt: Received

Thank you for your order!`

	msgOrderStart         = "📝 Let's start your jersey order!\n\nPlease enter your full name:"
	msgAskName            = "❌ Name cannot be empty. Please enter your full name:"
	msgAskShirtNumber     = "🔢 Please enter your desired shirt number (e.g., 10, 23, 99):"
	msgShirtNumberInvalid = "❌ Please enter a number between 0 and 999 (digits only):"
	msgAskShirtName       = "📝 Please enter the name to print on the shirt (e.g., 'JOHN', 'COACH'):"
	msgShirtNameInvalid   = "❌ Please enter a valid name (1-15 characters):"
	msgAskSize            = "📏 Please select your shirt size:"
	msgAskReceipt         = "💳 Please upload your payment receipt as a photo.\nMake sure the photo is clear and shows the payment details."
	msgReceiptMissing     = "❌ Please upload a photo of your payment receipt:"

	msgDesignStart       = "📝 Add New Jersey Design\n\nPlease enter the name of the design (e.g., 'Classic Stripes'):"
	msgDesignNameInvalid = "❌ Please enter a valid name (1-100 characters):"
	msgAskDesignDesc     = "📝 Now enter a description for the design (or send /skip to skip):"
	msgAskDesignImage    = "📸 Now upload the design image.\n\nSend me a clear photo of the jersey design:"
	msgDesignImageMiss   = "❌ Please upload a photo of the design:"
	msgDesignAdded       = "✅ Design Added Successfully!\n\nID: %d\nName: %s\nDescription: %s\n\nUsers can now vote for this design."

	msgVoteCaption       = "📸 %s\n\n"
	msgVoteCaptionTail   = "Click the button below to vote for this design."
	msgVoteButton        = "🗳️ Vote for %s"
	msgVoteImageFailed   = "❌ Failed to load image for %s. Please try again later."
	msgVoteSelect        = "🗳️ Please select your preferred design from the images above."
	msgNoDesigns         = "❌ No designs available for voting yet. Please check back later."
	msgVoteRecorded      = "✅ Vote Recorded!\n\nYou voted for: %s\n\nThank you for participating! 🎉"
	msgDesignUnavailable = "❌ This design is no longer available."

	msgCancelled      = "❌ Operation cancelled. You can start over with the appropriate command."
	msgSessionExpired = "❌ Session expired. Please start over with %s"
	msgWorkflowBusy   = "⚠️ Your %s form is still open. Finish it or send /cancel first."
	msgNoWorkflow     = "🤔 I wasn't expecting that. Send /help to see what I can do."
	msgNothingToSkip  = "Nothing to skip right now."
	msgUnknownCommand = "Unknown command. Send /help to see all commands."
	msgAdminOnly      = "⛔ This command is for admins only."
	msgGenericError   = "❌ An error occurred. Please try again or contact admin."

	msgNoDesignsListed   = "📭 No designs found. Use /add_design to add one."
	msgDesignListHeader  = "📋 Current Jersey Designs:\n\n"
	msgDesignListFooter  = "\nUse /edit_design to modify or /delete_design to remove."
	msgDeleteUsage       = "Usage: /delete_design <design_id>\nExample: /delete_design 3"
	msgInvalidDesignID   = "❌ Invalid design ID. Please provide a number."
	msgDesignNotFound    = "❌ Design with ID %d not found."
	msgDesignDeleted     = "✅ Design %s has been deleted.\nIt will no longer appear in voting."
	msgEditUsage         = "Usage: /edit_design <design_id> <name|desc|order|active> <value>\nExample: /edit_design 3 name Classic Stripes\nTo replace the image, send a photo with the caption /edit_design <design_id> image"
	msgEditImageUsage    = "📸 Send the new image as a photo with the caption /edit_design %d image"
	msgEditOrderInvalid  = "❌ Display order must be a whole number."
	msgEditActiveInvalid = "❌ Active must be yes or no."
	msgDesignUpdated     = "✅ Design %d updated (%s)."

	msgDeadlineUsage     = "Usage: /%s YYYY-MM-DD HH:MM\nExample: /%s 2024-12-31 23:59"
	msgDeadlineInvalid   = "❌ Invalid date format. Please use: YYYY-MM-DD HH:MM\nExample: /%s 2024-12-31 23:59"
	msgVoteDeadlineSet   = "✅ Vote deadline updated to: %s"
	msgPayDeadlineSet    = "✅ Payment deadline updated to: %s"
	msgDeadlines         = "📅 Current Deadlines:\n\n🗳️ Vote Deadline: %s (%s)\n💳 Payment Deadline: %s (%s)"
	msgNoVotes           = "No votes have been cast yet."
	msgResultsHeader     = "📊 Voting Results:\n\n"
	msgResultsLine       = "• %s: %d votes\n"
	msgResultsDangling   = "• (removed designs): %d votes\n"
	msgResultsTotal      = "\nTotal Votes: %d"
	msgTotalOrders       = "📦 Total Orders: %d"
	msgExportDone        = "📊 Orders export completed!"
	msgExportLink        = "📤 CSV export (link): %s"
	msgExportUnavailable = "❌ Export link is not configured."
)
