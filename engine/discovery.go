package engine

import (
	"fmt"
	"reflect"
	"strings"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// HandlerDescriptor describes one handler method RegisterHandlers found and
// wired up.
type HandlerDescriptor struct {
	SignalName  string
	MethodName  string
	PayloadType reflect.Type // nil for a no-payload handler
}

// RegisterHandlers scans target's method set for the naming convention
// "OnXxx" and registers each as a signal handler named "xxx" (lower-cased).
// A qualifying method has one of these shapes:
//
//	func (t T) OnXxx(data P) error
//	func (t T) OnXxx() error
//
// target only supplies the method set to discover; it is not itself the
// receiver invoked at dispatch time. At dispatch time the generated handler
// looks up the destination Model's UserData and invokes the matching method
// on that value, so every model sharing behavior type T gets routed to its
// own independent instance.
func RegisterHandlers(r *Router, target any) ([]HandlerDescriptor, error) {
	t := reflect.TypeOf(target)
	if t == nil {
		return nil, fmt.Errorf("%w: nil target", ErrArgument)
	}

	var found []HandlerDescriptor
	for i := 0; i < t.NumMethod(); i++ {
		method := t.Method(i)
		if !strings.HasPrefix(method.Name, "On") || len(method.Name) <= 2 {
			continue
		}
		mt := method.Func.Type()
		if mt.NumOut() != 1 || mt.Out(0) != errorType {
			continue
		}

		signalName := strings.ToLower(method.Name[2:])
		receiverType := mt.In(0)

		switch mt.NumIn() - 1 {
		case 0:
			handler := makeDiscoveredHandler(method, receiverType, nil)
			if _, err := r.RegisterSignal(signalName, handler); err != nil {
				return found, err
			}
			found = append(found, HandlerDescriptor{SignalName: signalName, MethodName: method.Name})
		case 1:
			payloadType := mt.In(1)
			handler := makeDiscoveredHandler(method, receiverType, payloadType)
			if _, err := r.RegisterSignal(signalName, handler); err != nil {
				return found, err
			}
			found = append(found, HandlerDescriptor{SignalName: signalName, MethodName: method.Name, PayloadType: payloadType})
		default:
			continue
		}
	}
	return found, nil
}

func makeDiscoveredHandler(method reflect.Method, receiverType, payloadType reflect.Type) Handler {
	return func(_ *Router, dest *Model, sig *Signal) error {
		recv := reflect.ValueOf(dest.UserData())
		if !recv.IsValid() || recv.Type() != receiverType {
			return nil
		}

		args := []reflect.Value{recv}
		if payloadType != nil {
			raw := sig.content.RawData()
			if raw == nil || reflect.TypeOf(raw) != payloadType {
				return nil
			}
			args = append(args, reflect.ValueOf(raw))
		}

		out := method.Func.Call(args)
		sig.handled = true
		if errVal, _ := out[0].Interface().(error); errVal != nil {
			return errVal
		}
		return nil
	}
}
