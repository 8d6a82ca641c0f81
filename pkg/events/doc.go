/*
Package events is the store's synchronous, in-process event bus.
Listeners subscribe to a Name and are invoked sequentially on Publish;
a listener that panics or whose context fails to build never aborts
dispatch for the remaining listeners, or the store operation that
triggered the publish.
*/
package events
