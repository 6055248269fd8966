package types

// Notice is a stable message code carried to the UI in the "notice" query
// parameter of a redirect.
type Notice string

const (
	NoticeNone                Notice = ""
	NoticeSellerNotLinked     Notice = "seller_not_linked"
	NoticeProviderError       Notice = "provider_error"
	NoticeCannotBuyOwnItem    Notice = "cannot_buy_own_item"
	NoticePaymentRegistered   Notice = "payment_registered"
	NoticePurchaseRequired    Notice = "purchase_required"
	NoticeDocumentNotFound    Notice = "document_not_found"
	NoticeMerchantLinked      Notice = "merchant_linked"
	NoticeMerchantLinkFailed  Notice = "merchant_link_failed"
	NoticeMerchantUnlinked    Notice = "merchant_unlinked"
	NoticeAuthenticationFirst Notice = "login_required"
)

var noticeMessages = map[Notice]string{
	NoticeSellerNotLinked:     "seller not linked; processed without platform commission",
	NoticeProviderError:       "could not start the payment, please try again",
	NoticeCannotBuyOwnItem:    "cannot buy own item",
	NoticePaymentRegistered:   "payment registered, check back in a few minutes",
	NoticePurchaseRequired:    "purchase required to download this document",
	NoticeDocumentNotFound:    "document not found",
	NoticeMerchantLinked:      "Mercado Pago account linked",
	NoticeMerchantLinkFailed:  "could not link Mercado Pago account",
	NoticeMerchantUnlinked:    "Mercado Pago account unlinked",
	NoticeAuthenticationFirst: "please log in first",
}

func (n Notice) Message() string {
	return noticeMessages[n]
}

// Known reports whether n is one of the codes above.
func (n Notice) Known() bool {
	_, ok := noticeMessages[n]
	return ok
}
