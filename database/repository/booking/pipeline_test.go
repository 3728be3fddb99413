package bookingRepo

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"fixerhub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func decode(t *testing.T, v any) any {
	t.Helper()
	raw, err := bson.MarshalExtJSON(bson.M{"v": v}, false, false)
	if err != nil {
		t.Fatalf("MarshalExtJSON: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	return doc["v"]
}

func doc(t *testing.T, v any) map[string]any {
	t.Helper()
	m, ok := v.(map[string]any)
	if !ok {
		t.Fatalf("%v is not a document", v)
	}
	return m
}

func onlyStage(t *testing.T, update any) map[string]any {
	t.Helper()
	if _, ok := update.(mongo.Pipeline); !ok {
		t.Fatalf("update is %T, want a pipeline", update)
	}
	stages := decode(t, update).([]any)
	if len(stages) != 1 {
		t.Fatalf("pipeline has %d stages, want 1", len(stages))
	}
	return doc(t, doc(t, stages[0])["$set"])
}

func TestTransitionUpdateWithoutPriceIsPlainSet(t *testing.T) {
	update := transitionUpdate(StatusChange{
		From:         models.BookingPending,
		To:           models.BookingCancelled,
		CancelReason: "$not a field path",
	}, time.Now())
	if _, ok := update.(mongo.Pipeline); ok {
		t.Fatal("a plain status change does not need a pipeline")
	}
	set := doc(t, doc(t, decode(t, update))["$set"])
	if set["status"] != string(models.BookingCancelled) || set["cancelReason"] != "$not a field path" {
		t.Fatalf("$set = %v", set)
	}
	if _, ok := set["originalPrice"]; ok {
		t.Fatal("originalPrice touched without a price change")
	}
}

func TestTransitionUpdateWithPriceKeepsOriginal(t *testing.T) {
	price := 4200.0
	set := onlyStage(t, transitionUpdate(StatusChange{
		From:      models.BookingQuoteRequested,
		To:        models.BookingQuoteSent,
		Price:     &price,
		Quotation: &models.Quotation{Amount: price, Notes: "$parts included"},
	}, time.Now()))

	if set["price"] != 4200.0 {
		t.Fatalf("price = %v", set["price"])
	}
	want := map[string]any{"$ifNull": []any{"$originalPrice", "$price"}}
	if got := set["originalPrice"]; !reflect.DeepEqual(got, want) {
		t.Fatalf("originalPrice = %v, want %v", got, want)
	}
	quotation := doc(t, doc(t, set["quotation"])["$literal"])
	if quotation["notes"] != "$parts included" {
		t.Fatalf("quotation = %v", quotation)
	}
}

func TestPaidPipeline(t *testing.T) {
	now := time.Now()
	inv := models.NewInvoice(0, "LKR", now)
	set := onlyStage(t, paidPipeline(models.NewPaidUpdate(models.MethodBankTransfer, "$REF-1", inv, now)))

	if set["status"] != string(models.BookingPaid) || set["paymentStatus"] != string(models.PaymentPaid) {
		t.Fatalf("status = %v/%v", set["status"], set["paymentStatus"])
	}
	if got := doc(t, set["paymentId"])["$literal"]; got != "$REF-1" {
		t.Fatalf("paymentId = %v, want the literal reference", set["paymentId"])
	}

	ifNull := doc(t, set["invoice"])["$ifNull"].([]any)
	if len(ifNull) != 2 || ifNull[0] != "$invoice" {
		t.Fatalf("invoice = %v, want the existing invoice kept", set["invoice"])
	}
	merge := doc(t, ifNull[1])["$mergeObjects"].([]any)
	if len(merge) != 2 {
		t.Fatalf("$mergeObjects = %v", merge)
	}
	issued := doc(t, doc(t, merge[0])["$literal"])
	if issued["invoiceNumber"] != inv.InvoiceNumber || issued["currency"] != "LKR" {
		t.Fatalf("issued invoice = %v", issued)
	}
	if got := doc(t, merge[1])["amount"]; got != "$price" {
		t.Fatalf("invoice amount = %v, want the stored $price", got)
	}

	without := onlyStage(t, paidPipeline(models.NewPaidUpdate(models.MethodCash, "CASH-1", nil, now)))
	if _, ok := without["invoice"]; ok {
		t.Fatal("invoice written without one to issue")
	}
}
