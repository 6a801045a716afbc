package log_messages

const (
	// gateway
	SendingInitiateRequest            = "sending STK push initiate request"
	ReceivedInitiateResponse          = "received STK push initiate response"
	ErrorFailedToBuildInitiateRequest = "failed to build initiate request: %w"
	ErrorFailedToSendInitiateRequest  = "failed to send initiate request: %w"
	ErrorFailedToDecodeInitiate       = "failed to decode initiate response: %w"
	ErrorInitiateUnexpectedStatus     = "initiate returned unexpected http status %d"
	SendingStatusRequest              = "sending transaction status request"
	ReceivedStatusResponse            = "received transaction status response"
	ErrorFailedToBuildStatusRequest   = "failed to build status request: %w"
	ErrorFailedToSendStatusRequest    = "failed to send status request: %w"
	ErrorFailedToDecodeStatus         = "failed to decode status response: %w"
	ErrorStatusUnexpectedStatus       = "status check returned unexpected http status %d"
	ErrorStatusUnknown                = "status check returned unknown status %q"
	ErrorStatusNotSuccessful          = "status check unsuccessful: %s"
	ErrorFailedToBuildURL             = "failed to build url with query params: %w"
	ErrorFailedToCloseResponseBody    = "failed to close gateway response body"

	// controller
	PaymentSending           = "sending fee payment request"
	PaymentFailedToSend      = "fee payment request was not accepted"
	PaymentPollingStarted    = "fee payment polling started"
	PaymentStatusPolled      = "fee payment status polled"
	PaymentTransientError    = "transient error while polling fee payment status"
	PaymentConfirmed         = "fee payment confirmed"
	PaymentRejected          = "fee payment rejected by gateway"
	PaymentTimedOut          = "fee payment polling timed out"
	PaymentPollingStopped    = "fee payment polling stopped"
	PaymentDuplicateSuccess  = "ignoring duplicate success for confirmed transaction"
	PaymentSuccessHookFailed = "success notification failed"

	// sessions
	ErrorPersistingFeeTransaction = "failed to persist fee transaction"
	ErrorPublishingPaymentEvent   = "failed to publish payment status event"
	ErrorCachingSnapshot          = "failed to cache checkout snapshot"
	ErrorCreatingLoan             = "failed to create loan record"
	ErrorSendingNotification      = "failed to publish sms notification"
	ErrorUploadingReceipt         = "failed to upload fee receipt"
	ErrorLoadingApplication       = "failed to load loan application"
	ConfirmationAlreadyHandled    = "confirmation already handled by another instance"
	ErrorCheckingCheckoutOwner    = "failed to check checkout ownership"
	CheckoutOwnedElsewhere        = "checkout owned by another session"

	// loan
	LoanQuoted              = "loan quoted"
	ErrorCachingApplication = "failed to cache loan application"

	// pubsub
	TopicDoesNotExists        = "topic %s does not exist"
	ErrorPubSubClientCreation = "failed to create pubsub client"
	ErrorMarshallingMessage   = "failed to marshal message: %w"
	ErrorInMessagePublishing  = "failed to publish message: %w"

	// kafka
	KafkaProducerCreated = "kafka producer created"

	// gcs
	ErrorMarshallingJSON      = "failed to marshal receipt json"
	ErrorUploadingToGCSBucket = "failed to upload to gcs bucket"
	ErrorClosingGCSWriter     = "failed to close gcs writer"
	ErrorClosingGCSClient     = "failed to close gcs client"
	UploadedToGCSBucket       = "uploaded receipt to gcs bucket"

	// store
	ErrorFindingEligibility = "error finding eligibility submission"
	ErrorInsertingDocument  = "error inserting document"
	ErrorFindingLoan        = "error finding loan"
	ErrorUpdatingFeeStatus  = "error updating fee transaction status"
)
