package inventory

import (
	"context"
	"strings"
	"testing"
)

func newTestToolset(spoken bool) *Toolset {
	state := NewState()
	if spoken {
		state.MarkUserSpoken()
	}
	return NewToolset(NewStore(), state, NewFrameRing(0))
}

func TestDetectAppliance(t *testing.T) {
	ts := newTestToolset(true)

	result, err := ts.detectAppliance(context.Background(), map[string]any{"appliance_type": "refrigerator"})
	if err != nil {
		t.Fatalf("detectAppliance failed: %v", err)
	}

	if result["status"] != "detected" {
		t.Errorf("Expected status 'detected', got %v", result["status"])
	}
	if result["appliance_type"] != "refrigerator" {
		t.Errorf("Expected appliance_type 'refrigerator', got %v", result["appliance_type"])
	}

	pending, ok := ts.store.Pending()
	if !ok {
		t.Fatal("Expected a pending appliance after detection")
	}
	if pending.Status != StatusPendingConfirmation {
		t.Errorf("Expected pending status %q, got %q", StatusPendingConfirmation, pending.Status)
	}
}

func TestDetectAppliance_GateBlocksBeforeUserSpeaks(t *testing.T) {
	ts := newTestToolset(false)

	result, err := ts.detectAppliance(context.Background(), map[string]any{"appliance_type": "oven"})
	if err != nil {
		t.Fatalf("detectAppliance failed: %v", err)
	}

	if result["status"] != "error" {
		t.Errorf("Expected status 'error' before user speaks, got %v", result["status"])
	}
	if result["message"] != "Wait for user to speak before detecting appliances." {
		t.Errorf("Unexpected gate message: %v", result["message"])
	}
	if _, ok := ts.store.Pending(); ok {
		t.Error("Gate must not create a pending appliance")
	}
}

func TestDetectAppliance_AlreadyPending(t *testing.T) {
	ts := newTestToolset(true)

	if _, err := ts.detectAppliance(context.Background(), map[string]any{"appliance_type": "oven"}); err != nil {
		t.Fatalf("first detect failed: %v", err)
	}
	result, err := ts.detectAppliance(context.Background(), map[string]any{"appliance_type": "dishwasher"})
	if err != nil {
		t.Fatalf("second detect failed: %v", err)
	}

	if result["status"] != "warning" {
		t.Errorf("Expected status 'warning' with a pending appliance, got %v", result["status"])
	}

	pending, _ := ts.store.Pending()
	if pending.Type != "oven" {
		t.Errorf("Pending appliance must not be overwritten; expected 'oven', got %q", pending.Type)
	}
}

func TestDetectAppliance_MissingArg(t *testing.T) {
	ts := newTestToolset(true)

	if _, err := ts.detectAppliance(context.Background(), map[string]any{}); err == nil {
		t.Error("Expected error for missing appliance_type")
	}
}

func TestConfirmApplianceDetection_Accept(t *testing.T) {
	ts := newTestToolset(true)
	ts.detectAppliance(context.Background(), map[string]any{"appliance_type": "microwave"})

	result, err := ts.confirmDetection(context.Background(), map[string]any{"user_wants_to_capture": true})
	if err != nil {
		t.Fatalf("confirmDetection failed: %v", err)
	}

	if result["status"] != "confirmed" {
		t.Fatalf("Expected status 'confirmed', got %v", result["status"])
	}
	id, _ := result["appliance_id"].(string)
	if id == "" {
		t.Fatal("Expected a generated appliance_id")
	}
	if ts.state.CurrentApplianceID() != id {
		t.Errorf("Expected current appliance ID %q recorded in state, got %q", id, ts.state.CurrentApplianceID())
	}

	pending, _ := ts.store.Pending()
	if pending.Status != StatusNeedsDetails {
		t.Errorf("Expected pending status %q, got %q", StatusNeedsDetails, pending.Status)
	}
	if pending.ConfirmedAt == nil {
		t.Error("Expected ConfirmedAt to be set")
	}
}

func TestConfirmApplianceDetection_Reject(t *testing.T) {
	ts := newTestToolset(true)
	ts.detectAppliance(context.Background(), map[string]any{"appliance_type": "microwave"})

	result, err := ts.confirmDetection(context.Background(), map[string]any{"user_wants_to_capture": false})
	if err != nil {
		t.Fatalf("confirmDetection failed: %v", err)
	}

	if result["status"] != "rejected" {
		t.Errorf("Expected status 'rejected', got %v", result["status"])
	}
	if _, ok := ts.store.Pending(); ok {
		t.Error("Rejection must clear the pending appliance")
	}
	if ts.store.Total() != 0 {
		t.Errorf("Rejected appliance must not enter the catalog, total=%d", ts.store.Total())
	}
}

func TestConfirmApplianceDetection_NoPending(t *testing.T) {
	ts := newTestToolset(true)

	result, err := ts.confirmDetection(context.Background(), map[string]any{"user_wants_to_capture": true})
	if err != nil {
		t.Fatalf("confirmDetection failed: %v", err)
	}

	if result["status"] != "error" {
		t.Errorf("Expected status 'error' with no pending appliance, got %v", result["status"])
	}
	if result["message"] != "No pending appliance to confirm" {
		t.Errorf("Unexpected message: %v", result["message"])
	}
}

func TestUpdateApplianceDetails(t *testing.T) {
	ts := newTestToolset(true)
	ts.detectAppliance(context.Background(), map[string]any{"appliance_type": "refrigerator"})
	ts.confirmDetection(context.Background(), map[string]any{"user_wants_to_capture": true})

	result, err := ts.updateDetails(context.Background(), map[string]any{"make": "Samsung", "model": "RF28"})
	if err != nil {
		t.Fatalf("updateDetails failed: %v", err)
	}

	if result["status"] != "completed" {
		t.Fatalf("Expected status 'completed', got %v", result["status"])
	}
	if result["total_appliances"] != 1 {
		t.Errorf("Expected total_appliances 1, got %v", result["total_appliances"])
	}
	if result["message"] != "Added Samsung RF28 to inventory" {
		t.Errorf("Unexpected message: %v", result["message"])
	}

	if _, ok := ts.store.Pending(); ok {
		t.Error("Completion must clear the pending appliance")
	}
	if ts.state.CurrentApplianceID() != "" {
		t.Error("Completion must clear the current appliance ID")
	}

	appliances := ts.store.Appliances()
	if len(appliances) != 1 {
		t.Fatalf("Expected 1 catalog entry, got %d", len(appliances))
	}
	done := appliances[0]
	if done.Make != "Samsung" || done.Model != "RF28" || done.Status != StatusCompleted {
		t.Errorf("Unexpected catalog entry: %+v", done)
	}
	if done.CompletedAt == nil {
		t.Error("Expected CompletedAt to be set")
	}
}

func TestUpdateApplianceDetails_NoPending(t *testing.T) {
	ts := newTestToolset(true)

	result, err := ts.updateDetails(context.Background(), map[string]any{"make": "LG", "model": "X1"})
	if err != nil {
		t.Fatalf("updateDetails failed: %v", err)
	}

	if result["status"] != "error" {
		t.Errorf("Expected status 'error' with no pending appliance, got %v", result["status"])
	}
	if result["message"] != "No matching pending appliance found" {
		t.Errorf("Unexpected message: %v", result["message"])
	}
}

func TestUpdateApplianceDetails_IDMismatch(t *testing.T) {
	ts := newTestToolset(true)
	ts.detectAppliance(context.Background(), map[string]any{"appliance_type": "dryer"})
	ts.confirmDetection(context.Background(), map[string]any{"user_wants_to_capture": true})

	// Simulate a stale follow-up for some other appliance.
	ts.state.SetCurrentApplianceID("other-id")

	result, err := ts.updateDetails(context.Background(), map[string]any{"make": "LG", "model": "X1"})
	if err != nil {
		t.Fatalf("updateDetails failed: %v", err)
	}

	if result["status"] != "error" {
		t.Errorf("Expected status 'error' on ID mismatch, got %v", result["status"])
	}
	if _, ok := ts.store.Pending(); !ok {
		t.Error("ID mismatch must leave the pending appliance untouched")
	}
}

func TestGetInventorySummary(t *testing.T) {
	ts := newTestToolset(true)
	ts.detectAppliance(context.Background(), map[string]any{"appliance_type": "oven"})
	ts.confirmDetection(context.Background(), map[string]any{"user_wants_to_capture": true})
	ts.updateDetails(context.Background(), map[string]any{"make": "Bosch", "model": "HBL8453"})

	result, err := ts.inventorySummary(context.Background(), nil)
	if err != nil {
		t.Fatalf("inventorySummary failed: %v", err)
	}

	if result["status"] != "success" {
		t.Errorf("Expected status 'success', got %v", result["status"])
	}
	if result["total_appliances"] != 1 {
		t.Errorf("Expected total_appliances 1, got %v", result["total_appliances"])
	}
	appliances, ok := result["appliances"].([]Appliance)
	if !ok || len(appliances) != 1 {
		t.Fatalf("Expected one appliance in summary, got %v", result["appliances"])
	}
	if appliances[0].Type != "oven" {
		t.Errorf("Expected appliance type 'oven', got %q", appliances[0].Type)
	}
}

func TestGetInventorySummary_GateBlocksBeforeUserSpeaks(t *testing.T) {
	ts := newTestToolset(false)

	result, err := ts.inventorySummary(context.Background(), nil)
	if err != nil {
		t.Fatalf("inventorySummary failed: %v", err)
	}

	if result["status"] != "error" {
		t.Errorf("Expected status 'error' before user speaks, got %v", result["status"])
	}
	if result["message"] != "Wait for user to speak before checking inventory." {
		t.Errorf("Unexpected gate message: %v", result["message"])
	}
}

func TestFullInventoryCycle_MultipleAppliances(t *testing.T) {
	ts := newTestToolset(true)
	ctx := context.Background()

	items := []struct{ typ, make, model string }{
		{"refrigerator", "Samsung", "RF28"},
		{"dishwasher", "Bosch", "SHX78"},
		{"washing machine", "LG", "WM4000"},
	}

	for _, item := range items {
		result, err := ts.detectAppliance(ctx, map[string]any{"appliance_type": item.typ})
		if err != nil || result["status"] != "detected" {
			t.Fatalf("detect(%s) = %v, %v", item.typ, result, err)
		}
		result, err = ts.confirmDetection(ctx, map[string]any{"user_wants_to_capture": true})
		if err != nil || result["status"] != "confirmed" {
			t.Fatalf("confirm(%s) = %v, %v", item.typ, result, err)
		}
		result, err = ts.updateDetails(ctx, map[string]any{"make": item.make, "model": item.model})
		if err != nil || result["status"] != "completed" {
			t.Fatalf("update(%s) = %v, %v", item.typ, result, err)
		}
	}

	if ts.store.Total() != len(items) {
		t.Fatalf("Expected %d appliances, got %d", len(items), ts.store.Total())
	}
	for i, appliance := range ts.store.Appliances() {
		if appliance.Type != items[i].typ {
			t.Errorf("Appliance %d: expected type %q, got %q", i, items[i].typ, appliance.Type)
		}
		if appliance.Status != StatusCompleted {
			t.Errorf("Appliance %d: expected status completed, got %q", i, appliance.Status)
		}
	}
}

func TestWorkflowWithRejection(t *testing.T) {
	ts := newTestToolset(true)
	ctx := context.Background()

	ts.detectAppliance(ctx, map[string]any{"appliance_type": "toaster"})
	ts.confirmDetection(ctx, map[string]any{"user_wants_to_capture": false})

	// After a rejection the next detection proceeds cleanly.
	result, err := ts.detectAppliance(ctx, map[string]any{"appliance_type": "oven"})
	if err != nil {
		t.Fatalf("detect after rejection failed: %v", err)
	}
	if result["status"] != "detected" {
		t.Errorf("Expected status 'detected' after rejection, got %v", result["status"])
	}
	if ts.store.Total() != 0 {
		t.Errorf("Rejected appliance must not be counted, total=%d", ts.store.Total())
	}
}

func TestMonitorVideoStream(t *testing.T) {
	ts := newTestToolset(true)

	result, err := ts.monitorVideoStream(context.Background(), nil)
	if err != nil {
		t.Fatalf("monitorVideoStream failed: %v", err)
	}
	if result["status"] != "no_frames" {
		t.Errorf("Expected status 'no_frames' with empty ring, got %v", result["status"])
	}
	if result["frame_count"] != 0 {
		t.Errorf("Expected frame_count 0, got %v", result["frame_count"])
	}

	ts.frames.Add([]byte{0xff, 0xd8, 0xff}, "image/jpeg")
	ts.frames.Add([]byte{0xff, 0xd8, 0xff, 0xe0}, "image/jpeg")

	result, err = ts.monitorVideoStream(context.Background(), nil)
	if err != nil {
		t.Fatalf("monitorVideoStream failed: %v", err)
	}
	if result["status"] != "receiving" {
		t.Errorf("Expected status 'receiving', got %v", result["status"])
	}
	if result["frame_count"] != 2 {
		t.Errorf("Expected frame_count 2, got %v", result["frame_count"])
	}
	if result["frame_size_bytes"] != 4 {
		t.Errorf("Expected frame_size_bytes of latest frame (4), got %v", result["frame_size_bytes"])
	}
	if ts, _ := result["latest_frame_timestamp"].(string); ts == "" {
		t.Error("Expected latest_frame_timestamp to be set")
	}
}

func TestRequestFrameAnalysis(t *testing.T) {
	ts := newTestToolset(true)

	result, err := ts.requestFrameAnalysis(context.Background(), nil)
	if err != nil {
		t.Fatalf("requestFrameAnalysis failed: %v", err)
	}
	if result["status"] != "no_frames" {
		t.Errorf("Expected status 'no_frames' with empty ring, got %v", result["status"])
	}

	ts.frames.Add([]byte{0x01}, "image/jpeg")

	result, err = ts.requestFrameAnalysis(context.Background(), nil)
	if err != nil {
		t.Fatalf("requestFrameAnalysis failed: %v", err)
	}
	if result["status"] != "ready" {
		t.Errorf("Expected status 'ready', got %v", result["status"])
	}
	instruction, _ := result["instruction"].(string)
	if !strings.Contains(instruction, "detect_appliance") {
		t.Errorf("Expected instruction to reference detect_appliance, got %q", instruction)
	}
}
